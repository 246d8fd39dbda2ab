package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-canvas-be/pkg/llm"

	"github.com/google/uuid"
)

const (
	defaultModel = "gemini-1.5-flash"
	endpointFmt  = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
)

// GeminiProvider talks to the Generative Language REST API directly,
// including function calling.
type GeminiProvider struct {
	APIKey    string
	ModelName string
	Client    *http.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = defaultModel
	}
	return &GeminiProvider{
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiContent struct {
	Role  string        `json:"role,omitempty"`
	Parts []*geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type        string                   `json:"type"`
	Description string                   `json:"description,omitempty"`
	Properties  map[string]*geminiSchema `json:"properties,omitempty"`
	Required    []string                 `json:"required,omitempty"`
	Items       *geminiSchema            `json:"items,omitempty"`
}

type geminiFunctionDeclaration struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Parameters  *geminiSchema `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []*geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []*geminiContent        `json:"contents"`
	Tools             []*geminiTool           `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

// --- Interface Implementation ---

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	completion, err := g.ChatWithTools(ctx, history, nil, opts...)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (g *GeminiProvider) ChatWithTools(
	ctx context.Context,
	history []llm.Message,
	tools []llm.ToolDefinition,
	opts ...llm.Option,
) (*llm.Completion, error) {
	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	payload := geminiRequest{}

	// System instructions travel out-of-band, not as a content entry.
	for _, msg := range history {
		if msg.Role == llm.RoleSystem {
			payload.SystemInstruction = &geminiContent{
				Parts: []*geminiPart{{Text: msg.Content}},
			}
			break
		}
	}
	payload.Contents = buildContents(history)

	if len(tools) > 0 {
		payload.Tools = []*geminiTool{{FunctionDeclarations: buildDeclarations(tools)}}
	}

	if options.Temperature > 0 || options.MaxTokens > 0 {
		cfg := &geminiGenerationConfig{MaxOutputTokens: options.MaxTokens}
		if options.Temperature > 0 {
			t := options.Temperature
			cfg.Temperature = &t
		}
		payload.GenerationConfig = cfg
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf(endpointFmt, model),
		bytes.NewBuffer(payloadJson),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(resBody),
		)
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	completion := &llm.Completion{}
	var textParts []string
	for _, part := range geminiRes.Candidates[0].Content.Parts {
		if part.Text != "" {
			textParts = append(textParts, part.Text)
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("marshal function call args: %w", err)
			}
			completion.ToolCalls = append(completion.ToolCalls, llm.ToolCall{
				// The REST API carries no call id; synthesize one so that
				// results can be matched back to requests.
				ID:   uuid.NewString(),
				Name: part.FunctionCall.Name,
				Args: args,
			})
		}
	}
	completion.Content = strings.Join(textParts, "")

	return completion, nil
}

// buildContents maps generic messages to Gemini contents. Consecutive
// tool results are grouped into a single user content carrying one
// functionResponse part each.
func buildContents(history []llm.Message) []*geminiContent {
	var contents []*geminiContent
	for i := 0; i < len(history); i++ {
		msg := history[i]
		switch msg.Role {
		case llm.RoleSystem:
			continue

		case llm.RoleUser:
			contents = append(contents, &geminiContent{
				Role:  "user",
				Parts: []*geminiPart{{Text: msg.Content}},
			})

		case llm.RoleAssistant:
			parts := make([]*geminiPart, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, &geminiPart{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				var args map[string]interface{}
				_ = json.Unmarshal(call.Args, &args)
				parts = append(parts, &geminiPart{
					FunctionCall: &geminiFunctionCall{Name: call.Name, Args: args},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &geminiContent{Role: "model", Parts: parts})
			}

		case llm.RoleTool:
			var parts []*geminiPart
			for ; i < len(history) && history[i].Role == llm.RoleTool; i++ {
				parts = append(parts, &geminiPart{
					FunctionResponse: &geminiFunctionResponse{
						Name:     history[i].Name,
						Response: map[string]interface{}{"result": history[i].Content},
					},
				})
			}
			i--
			contents = append(contents, &geminiContent{Role: "user", Parts: parts})
		}
	}
	return contents
}

func buildDeclarations(tools []llm.ToolDefinition) []*geminiFunctionDeclaration {
	declarations := make([]*geminiFunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		schema := &geminiSchema{
			Type:       "OBJECT",
			Properties: map[string]*geminiSchema{},
		}
		for _, param := range tool.Parameters {
			schema.Properties[param.Name] = paramSchema(param)
			if param.Required {
				schema.Required = append(schema.Required, param.Name)
			}
		}
		decl := &geminiFunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if len(tool.Parameters) > 0 {
			decl.Parameters = schema
		}
		declarations = append(declarations, decl)
	}
	return declarations
}

func paramSchema(param llm.ToolParameter) *geminiSchema {
	switch param.Type {
	case "boolean":
		return &geminiSchema{Type: "BOOLEAN", Description: param.Description}
	case "integer":
		return &geminiSchema{Type: "INTEGER", Description: param.Description}
	case "array":
		return &geminiSchema{
			Type:        "ARRAY",
			Description: param.Description,
			Items:       &geminiSchema{Type: "STRING"},
		}
	default:
		return &geminiSchema{Type: "STRING", Description: param.Description}
	}
}
