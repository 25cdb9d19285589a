package lm

// EventType tags a stream event.
type EventType string

const (
	EventTextDelta     EventType = "text-delta"
	EventToolCallDelta EventType = "tool-call-delta"
	EventToolCall      EventType = "tool-call"
	EventFinish        EventType = "finish"
)

// Event is the envelope emitted by a stream. Payload holds one of TextDelta,
// ToolCallDelta, ToolCallFinal or Finish, matching Type.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// TextDelta is emitted for every content fragment, empty ones included.
type TextDelta struct {
	Text string `json:"text"`
}

// ToolCallDelta carries one slice of a tool call's argument text.
type ToolCallDelta struct {
	ToolCallID    string `json:"tool_call_id"`
	ToolName      string `json:"tool_name"`
	ArgsTextDelta string `json:"args_text_delta"`
}

// ToolCallFinal is emitted once per tool call, when its arguments first parse
// as JSON.
type ToolCallFinal struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Args       string `json:"args"`
}

// Finish is always the last event of a complete stream.
type Finish struct {
	FinishReason FinishReason `json:"finish_reason"`
	Usage        Usage        `json:"usage"`
	LogProbs     LogProbs     `json:"logprobs,omitempty"`
}

// NewTextDelta builds a text-delta event. Empty text is a valid delta.
func NewTextDelta(text string) Event {
	return Event{Type: EventTextDelta, Payload: TextDelta{Text: text}}
}

// NewToolCallDelta builds an event carrying one slice of a tool call's arguments.
func NewToolCallDelta(id, name, delta string) Event {
	return Event{Type: EventToolCallDelta, Payload: ToolCallDelta{ToolCallID: id, ToolName: name, ArgsTextDelta: delta}}
}

// NewToolCall builds the final event for a tool call whose arguments are complete JSON.
func NewToolCall(id, name, args string) Event {
	return Event{Type: EventToolCall, Payload: ToolCallFinal{ToolCallID: id, ToolName: name, Args: args}}
}

// NewFinish builds the terminal event of a stream.
func NewFinish(reason FinishReason, usage Usage, logprobs LogProbs) Event {
	return Event{Type: EventFinish, Payload: Finish{FinishReason: reason, Usage: usage, LogProbs: logprobs}}
}
