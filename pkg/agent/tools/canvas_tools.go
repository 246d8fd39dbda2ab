package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/pkg/prosemirror"

	"github.com/google/uuid"
)

const logModule = "canvas_tools"

// CanvasTools bundles the per-request state shared by the canvas tool
// set: the store, the canvas and user identities, and a read cache.
// The cache only serves the read-only tools and is dropped after every
// save, so mutators always observe freshly persisted state.
type CanvasTools struct {
	store    CanvasStore
	canvasId uuid.UUID
	userId   uuid.UUID
	log      logger.ILogger

	cached *prosemirror.Node
}

func NewCanvasTools(store CanvasStore, canvasId, userId uuid.UUID, log logger.ILogger) *CanvasTools {
	return &CanvasTools{
		store:    store,
		canvasId: canvasId,
		userId:   userId,
		log:      log,
	}
}

// NewCanvasRegistry builds the per-request registry with the full tool
// catalog bound to one canvas and one acting user.
func NewCanvasRegistry(store CanvasStore, canvasId, userId uuid.UUID, log logger.ILogger) *Registry {
	ct := NewCanvasTools(store, canvasId, userId, log)
	r := NewRegistry()
	for _, t := range ct.All() {
		r.Register(t)
	}
	return r
}

func (ct *CanvasTools) loadCanvas(ctx context.Context, useCache bool) (*prosemirror.Node, error) {
	if useCache && ct.cached != nil {
		return ct.cached, nil
	}
	content, err := ct.store.Load(ctx, ct.canvasId, ct.userId)
	if err != nil {
		return nil, err
	}
	if content == nil {
		content = prosemirror.EmptyDocument()
	}
	ct.cached = content
	return content, nil
}

func (ct *CanvasTools) saveCanvas(ctx context.Context, content *prosemirror.Node) error {
	if err := ct.store.Save(ctx, ct.canvasId, ct.userId, content); err != nil {
		return err
	}
	// Invalidate cache after save
	ct.cached = nil
	ct.log.Info(logModule, "canvas saved", map[string]interface{}{
		"canvas_id": ct.canvasId,
	})
	return nil
}

// All returns the full canvas tool catalog.
func (ct *CanvasTools) All() []DocumentTool {
	return []DocumentTool{
		ct.getCanvasTextTool(),
		ct.searchCanvasTool(),
		ct.replaceTextTool(),
		ct.addSectionTool(),
		ct.addBulletListTool(),
		ct.addTaskListTool(),
		ct.addCodeBlockTool(),
	}
}

// --- get_canvas_text ---

func (ct *CanvasTools) getCanvasTextTool() DocumentTool {
	return &funcTool{
		name: "get_canvas_text",
		description: "Read all text content from the canvas. " +
			"Use this FIRST to understand what's currently on the canvas before making any modifications. " +
			"Returns the plain text content of the entire canvas.",
		fn: func(ctx context.Context, _ json.RawMessage) Result {
			content, err := ct.loadCanvas(ctx, true)
			if err != nil {
				return failureResult("Failed to read canvas: %v", err)
			}
			ix, err := prosemirror.NewIndex(content)
			if err != nil {
				return failureResult("Failed to read canvas: %v", err)
			}
			text := ix.ExtractText()
			return successResult(
				fmt.Sprintf("Canvas content extracted (%d characters)", len(text)),
				map[string]interface{}{
					"text":            text,
					"character_count": len(text),
				},
			)
		},
	}
}

// --- search_canvas ---

type searchCanvasArgs struct {
	Query         string `json:"query"`
	CaseSensitive bool   `json:"case_sensitive"`
}

func (ct *CanvasTools) searchCanvasTool() DocumentTool {
	return &funcTool{
		name: "search_canvas",
		description: "Search for specific text in the canvas. " +
			"Use this to find occurrences of text before replacing. " +
			"Returns the number of matches found and their locations.",
		parameters: []Parameter{
			{Name: "query", Type: "string", Description: "The text to search for in the canvas", Required: true},
			{Name: "case_sensitive", Type: "boolean", Description: "Whether the search should be case-sensitive"},
		},
		fn: func(ctx context.Context, raw json.RawMessage) Result {
			var args searchCanvasArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return failureResult("Failed to search canvas: %v", err)
			}

			content, err := ct.loadCanvas(ctx, true)
			if err != nil {
				return failureResult("Failed to search canvas: %v", err)
			}
			ix, err := prosemirror.NewIndex(content)
			if err != nil {
				return failureResult("Failed to search canvas: %v", err)
			}
			matches, err := ix.FindText(args.Query, args.CaseSensitive)
			if err != nil {
				return failureResult("Failed to search canvas: %v", err)
			}

			// Limit to first 10 for readability
			locations := make([]map[string]interface{}, 0, 10)
			for i, m := range matches {
				if i >= 10 {
					break
				}
				locations = append(locations, map[string]interface{}{
					"text": m.Text,
					"path": m.Path,
				})
			}

			return successResult(
				fmt.Sprintf("Found %d occurrence(s) of '%s'", len(matches), args.Query),
				map[string]interface{}{
					"query":       args.Query,
					"match_count": len(matches),
					"locations":   locations,
					"truncated":   len(matches) > 10,
				},
			)
		},
	}
}

// --- replace_text ---

type replaceTextArgs struct {
	OldText       string `json:"old_text"`
	NewText       string `json:"new_text"`
	CaseSensitive bool   `json:"case_sensitive"`
}

func (ct *CanvasTools) replaceTextTool() DocumentTool {
	return &funcTool{
		name: "replace_text",
		description: "Find and replace text throughout the canvas. " +
			"Replaces ALL occurrences of old_text with new_text. " +
			"Large canvases are processed in chunks automatically.",
		parameters: []Parameter{
			{Name: "old_text", Type: "string", Description: "The text to find and replace", Required: true},
			{Name: "new_text", Type: "string", Description: "The text to replace with", Required: true},
			{Name: "case_sensitive", Type: "boolean", Description: "Whether the replacement should be case-sensitive"},
		},
		fn: func(ctx context.Context, raw json.RawMessage) Result {
			var args replaceTextArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return failureResult("Failed to replace text: %v", err)
			}

			content, err := ct.loadCanvas(ctx, false)
			if err != nil {
				return failureResult("Failed to replace text: %v", err)
			}

			count, err := prosemirror.ReplaceInDocument(content, args.OldText, args.NewText, args.CaseSensitive)
			if err != nil {
				return failureResult("Failed to replace text: %v", err)
			}

			// Persistence is skipped when nothing changed.
			if count > 0 {
				if err := ct.saveCanvas(ctx, content); err != nil {
					return failureResult("Failed to replace text: %v", err)
				}
			}

			ct.log.Info(logModule, "replaced text", map[string]interface{}{
				"canvas_id": ct.canvasId,
				"old_text":  args.OldText,
				"new_text":  args.NewText,
				"count":     count,
			})

			return successResult(
				fmt.Sprintf("Replaced %d occurrence(s) of '%s' with '%s'", count, args.OldText, args.NewText),
				map[string]interface{}{
					"replacements_made": count,
					"old_text":          args.OldText,
					"new_text":          args.NewText,
				},
			)
		},
	}
}

// --- add_section ---

type addSectionArgs struct {
	Heading      string   `json:"heading"`
	Paragraphs   []string `json:"paragraphs"`
	Position     string   `json:"position"`
	HeadingLevel int      `json:"heading_level"`
}

func (ct *CanvasTools) addSectionTool() DocumentTool {
	return &funcTool{
		name: "add_section",
		description: "Add a new section with a heading and paragraphs to the canvas. " +
			"Position is 'start' or 'end' (default end); heading_level is 1-6 where 1 is largest (default 2).",
		parameters: []Parameter{
			{Name: "heading", Type: "string", Description: "The heading text for the new section", Required: true},
			{Name: "paragraphs", Type: "array", Description: "List of paragraph texts to add under the heading", Required: true},
			{Name: "position", Type: "string", Description: "Where to add the section: 'start' or 'end' of the document"},
			{Name: "heading_level", Type: "integer", Description: "Heading level (1-6), where 1 is the largest"},
		},
		fn: func(ctx context.Context, raw json.RawMessage) Result {
			var args addSectionArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return failureResult("Failed to add section: %v", err)
			}
			if args.HeadingLevel == 0 {
				args.HeadingLevel = 2
			}

			content, err := ct.loadCanvas(ctx, false)
			if err != nil {
				return failureResult("Failed to add section: %v", err)
			}

			newNodes := []*prosemirror.Node{prosemirror.Heading(args.Heading, args.HeadingLevel)}
			for _, para := range args.Paragraphs {
				newNodes = append(newNodes, prosemirror.Paragraph(para))
			}
			prosemirror.InsertFragment(content, newNodes, position(args.Position))

			if err := ct.saveCanvas(ctx, content); err != nil {
				return failureResult("Failed to add section: %v", err)
			}

			return successResult(
				fmt.Sprintf("Added section '%s' with %d paragraph(s) at %s",
					args.Heading, len(args.Paragraphs), position(args.Position)),
				map[string]interface{}{
					"heading":         args.Heading,
					"paragraph_count": len(args.Paragraphs),
					"position":        string(position(args.Position)),
				},
			)
		},
	}
}

// --- add_bullet_list ---

type addBulletListArgs struct {
	Items    []string `json:"items"`
	Position string   `json:"position"`
}

func (ct *CanvasTools) addBulletListTool() DocumentTool {
	return &funcTool{
		name: "add_bullet_list",
		description: "Add a bullet point list to the canvas. " +
			"Each item will be formatted as a separate bullet point.",
		parameters: []Parameter{
			{Name: "items", Type: "array", Description: "List of bullet point items to add", Required: true},
			{Name: "position", Type: "string", Description: "Where to add the list: 'start' or 'end' of the document"},
		},
		fn: func(ctx context.Context, raw json.RawMessage) Result {
			var args addBulletListArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return failureResult("Failed to add bullet list: %v", err)
			}

			content, err := ct.loadCanvas(ctx, false)
			if err != nil {
				return failureResult("Failed to add bullet list: %v", err)
			}

			node := prosemirror.BulletList(args.Items)
			prosemirror.InsertFragment(content, []*prosemirror.Node{node}, position(args.Position))

			if err := ct.saveCanvas(ctx, content); err != nil {
				return failureResult("Failed to add bullet list: %v", err)
			}

			return successResult(
				fmt.Sprintf("Added bullet list with %d item(s) at %s", len(args.Items), position(args.Position)),
				map[string]interface{}{
					"item_count": len(args.Items),
					"position":   string(position(args.Position)),
				},
			)
		},
	}
}

// --- add_task_list ---

type addTaskListArgs struct {
	Tasks    []string `json:"tasks"`
	Position string   `json:"position"`
}

func (ct *CanvasTools) addTaskListTool() DocumentTool {
	return &funcTool{
		name: "add_task_list",
		description: "Add a task list with checkboxes to the canvas. " +
			"Each task will have an unchecked checkbox.",
		parameters: []Parameter{
			{Name: "tasks", Type: "array", Description: "List of task descriptions to add", Required: true},
			{Name: "position", Type: "string", Description: "Where to add the task list: 'start' or 'end' of the document"},
		},
		fn: func(ctx context.Context, raw json.RawMessage) Result {
			var args addTaskListArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return failureResult("Failed to add task list: %v", err)
			}

			content, err := ct.loadCanvas(ctx, false)
			if err != nil {
				return failureResult("Failed to add task list: %v", err)
			}

			items := make([]prosemirror.TaskItem, 0, len(args.Tasks))
			for _, task := range args.Tasks {
				items = append(items, prosemirror.TaskItem{Text: task, Checked: false})
			}
			node := prosemirror.TaskList(items)
			prosemirror.InsertFragment(content, []*prosemirror.Node{node}, position(args.Position))

			if err := ct.saveCanvas(ctx, content); err != nil {
				return failureResult("Failed to add task list: %v", err)
			}

			return successResult(
				fmt.Sprintf("Added task list with %d task(s) at %s", len(args.Tasks), position(args.Position)),
				map[string]interface{}{
					"task_count": len(args.Tasks),
					"position":   string(position(args.Position)),
				},
			)
		},
	}
}

// --- add_code_block ---

type addCodeBlockArgs struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Position string `json:"position"`
}

func (ct *CanvasTools) addCodeBlockTool() DocumentTool {
	return &funcTool{
		name: "add_code_block",
		description: "Add a code block with optional syntax highlighting to the canvas. " +
			"Language can be e.g. 'python', 'javascript', 'go'.",
		parameters: []Parameter{
			{Name: "code", Type: "string", Description: "The code content to add", Required: true},
			{Name: "language", Type: "string", Description: "Programming language for syntax highlighting"},
			{Name: "position", Type: "string", Description: "Where to add the code block: 'start' or 'end' of the document"},
		},
		fn: func(ctx context.Context, raw json.RawMessage) Result {
			var args addCodeBlockArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return failureResult("Failed to add code block: %v", err)
			}

			content, err := ct.loadCanvas(ctx, false)
			if err != nil {
				return failureResult("Failed to add code block: %v", err)
			}

			node := prosemirror.CodeBlock(args.Code, args.Language)
			prosemirror.InsertFragment(content, []*prosemirror.Node{node}, position(args.Position))

			if err := ct.saveCanvas(ctx, content); err != nil {
				return failureResult("Failed to add code block: %v", err)
			}

			langInfo := ""
			if args.Language != "" {
				langInfo = fmt.Sprintf(" (%s)", args.Language)
			}
			return successResult(
				fmt.Sprintf("Added code block%s at %s", langInfo, position(args.Position)),
				map[string]interface{}{
					"language":    args.Language,
					"position":    string(position(args.Position)),
					"code_length": len(args.Code),
				},
			)
		},
	}
}

// position normalizes the position argument; anything other than
// "start" means end, matching the insert semantics.
func position(value string) prosemirror.Position {
	if value == string(prosemirror.PositionStart) {
		return prosemirror.PositionStart
	}
	return prosemirror.PositionEnd
}
