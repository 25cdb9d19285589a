package lm

import "time"

// FinishReason is why generation stopped.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content-filter"
	FinishToolCalls     FinishReason = "tool-calls"
	FinishOther         FinishReason = "other"
)

// Usage counts tokens for one call. The zero value means nothing was reported.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type TopLogProb struct {
	Token   string  `json:"token"`
	LogProb float64 `json:"logprob"`
}

type LogProb struct {
	Token       string       `json:"token"`
	LogProb     float64      `json:"logprob"`
	TopLogProbs []TopLogProb `json:"top_logprobs"`
}

// LogProbs is nil when the vendor sent none, which is not the same as an
// empty list.
type LogProbs []LogProb

// ToolCall is a completed tool invocation. Args is the raw JSON text.
type ToolCall struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"`
}

// ResponseMetadata identifies the vendor response.
type ResponseMetadata struct {
	ID      string    `json:"id,omitempty"`
	ModelID string    `json:"model_id,omitempty"`
	Created time.Time `json:"created,omitempty"`
}

type WarningType string

const (
	WarningUnsupportedSetting WarningType = "unsupported-setting"
	WarningOther              WarningType = "other"
)

// CallWarning reports a call option the model ignored.
type CallWarning struct {
	Type    WarningType `json:"type"`
	Setting string      `json:"setting,omitempty"`
	Message string      `json:"message,omitempty"`
}

// GenerateResult is the outcome of a non-streaming call.
type GenerateResult struct {
	Text         string           `json:"text"`
	ToolCalls    []ToolCall       `json:"tool_calls,omitempty"`
	FinishReason FinishReason     `json:"finish_reason"`
	Usage        Usage            `json:"usage"`
	LogProbs     LogProbs         `json:"logprobs,omitempty"`
	Response     ResponseMetadata `json:"response"`
	Warnings     []CallWarning    `json:"warnings,omitempty"`
}
