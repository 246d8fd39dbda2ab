package agent

type EventType string

const (
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventResponse   EventType = "response"
)

// Event is one progress notification from a streaming run. Which
// fields are set depends on the type: tool_call carries ToolName and
// ToolArgs, tool_result carries ToolName and Result, response carries
// Message. Transport framing (started, completed, error) belongs to
// the caller.
type Event struct {
	Type     EventType              `json:"event"`
	ToolName string                 `json:"tool_name,omitempty"`
	ToolArgs map[string]interface{} `json:"tool_args,omitempty"`
	Result   string                 `json:"result,omitempty"`
	Message  string                 `json:"message,omitempty"`
}
