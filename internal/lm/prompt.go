package lm

import (
	"encoding/json"
	"net/http"
)

// Role tags a prompt message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// PartType tags a content part.
type PartType string

const (
	PartText       PartType = "text"
	PartImage      PartType = "image"
	PartToolCall   PartType = "tool-call"
	PartToolResult PartType = "tool-result"
)

// Part is one ordered segment of a message.
//
// Text is used by PartText, ImageURL by PartImage. Tool-call parts carry
// ToolCallID, ToolName and Args; tool-result parts carry ToolCallID,
// ToolName, Result and IsError.
type Part struct {
	Type PartType `json:"type"`

	Text string `json:"text,omitempty"`

	ImageURL string `json:"image_url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`

	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Args       string          `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	IsError    bool            `json:"is_error,omitempty"`
}

func TextPart(text string) Part { return Part{Type: PartText, Text: text} }

func ImagePart(url string) Part { return Part{Type: PartImage, ImageURL: url} }

func ToolCallPart(id, name, args string) Part {
	return Part{Type: PartToolCall, ToolCallID: id, ToolName: name, Args: args}
}

func ToolResultPart(id, name string, result json.RawMessage) Part {
	return Part{Type: PartToolResult, ToolCallID: id, ToolName: name, Result: result}
}

// Message is a role-tagged list of content parts.
type Message struct {
	Role    Role   `json:"role"`
	Content []Part `json:"content"`
}

func System(text string) Message    { return Message{Role: RoleSystem, Content: []Part{TextPart(text)}} }
func User(text string) Message      { return Message{Role: RoleUser, Content: []Part{TextPart(text)}} }
func Assistant(text string) Message { return Message{Role: RoleAssistant, Content: []Part{TextPart(text)}} }

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Content {
		if p.Type == PartText {
			out += p.Text
		}
	}
	return out
}

// Prompt is the ordered conversation sent to a model. Callers own it; models
// never modify it.
type Prompt []Message

// Tool declares a function the model may call.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON Schema object.
	Parameters map[string]any
	Strict     bool
}

type ToolChoiceType string

const (
	ToolChoiceAuto     ToolChoiceType = "auto"
	ToolChoiceNone     ToolChoiceType = "none"
	ToolChoiceRequired ToolChoiceType = "required"
	ToolChoiceTool     ToolChoiceType = "tool"
)

// ToolChoice constrains tool usage. ToolName is only read for ToolChoiceTool.
type ToolChoice struct {
	Type     ToolChoiceType
	ToolName string
}

type ModeType string

const (
	ModePlain ModeType = "plain"
	ModeTools ModeType = "tools"
)

// Mode describes the call shape. Tools and ToolChoice are only read in ModeTools.
type Mode struct {
	Type       ModeType
	Tools      []Tool
	ToolChoice ToolChoice
}

func PlainMode() Mode { return Mode{Type: ModePlain} }

func ToolMode(choice ToolChoice, tools ...Tool) Mode {
	return Mode{Type: ModeTools, Tools: tools, ToolChoice: choice}
}

// CallOptions is one generate or stream request. Nil pointers are unset.
type CallOptions struct {
	Prompt Prompt
	Mode   Mode

	MaxTokens        *int
	Temperature      *float64
	TopP             *float64
	TopK             *int
	Seed             *int64
	Stop             []string
	PresencePenalty  *float64
	FrequencyPenalty *float64

	// Headers are merged into the outgoing request by the transport.
	Headers http.Header
}
