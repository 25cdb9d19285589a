// Package openaicompat implements lm.Model for OpenAI-compatible chat
// completion APIs.
package openaicompat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"chatbridge/internal/lm"
)

// Transport posts a JSON body and returns a 2xx response. Anything else is
// returned as an error and passed to the caller unchanged.
type Transport interface {
	PostJSON(ctx context.Context, path string, body any, header http.Header) (*http.Response, error)
}

// Settings are fixed per model instance.
type Settings struct {
	// Provider names the vendor in logs and Provider(). Defaults to "openai".
	Provider string
	// LogProbs requests per-token log probabilities.
	LogProbs bool
	// TopLogProbs requests that many alternatives per token; it implies LogProbs.
	TopLogProbs int
	Logger      *zap.Logger
}

var _ lm.Model = (*ChatModel)(nil)

// ChatModel is stateless between calls and safe for concurrent use as long
// as its Transport is.
type ChatModel struct {
	modelID   string
	transport Transport
	settings  Settings
	logger    *zap.Logger
}

// NewChatModel constructs a model bound to modelID.
func NewChatModel(modelID string, transport Transport, settings Settings) *ChatModel {
	if settings.Provider == "" {
		settings.Provider = "openai"
	}
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatModel{
		modelID:   modelID,
		transport: transport,
		settings:  settings,
		logger:    logger.With(zap.String("provider", settings.Provider), zap.String("model", modelID)),
	}
}

func (m *ChatModel) Provider() string { return m.settings.Provider }

func (m *ChatModel) ModelID() string { return m.modelID }

func (m *ChatModel) DoGenerate(ctx context.Context, opts lm.CallOptions) (lm.GenerateResult, error) {
	req, warnings, err := m.buildRequest(opts, false)
	if err != nil {
		return lm.GenerateResult{}, err
	}

	resp, err := m.transport.PostJSON(ctx, chatCompletionsPath, req, opts.Headers)
	if err != nil {
		m.logger.Debug("generate request failed", zap.Error(err))
		return lm.GenerateResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return lm.GenerateResult{}, err
	}
	var body openai.ChatCompletion
	if err := json.Unmarshal(raw, &body); err != nil {
		return lm.GenerateResult{}, &lm.MappingError{Reason: "decode response: " + err.Error(), Raw: raw}
	}

	result, err := mapResponse(&body, raw)
	if err != nil {
		return lm.GenerateResult{}, err
	}
	result.Warnings = warnings
	m.logger.Debug("generate finished",
		zap.String("finish_reason", string(result.FinishReason)),
		zap.Int("tool_calls", len(result.ToolCalls)),
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
	)
	return result, nil
}

// DoStream starts a streaming call. Errors before the first byte of the body
// are returned directly; later ones are yielded by the stream's events.
func (m *ChatModel) DoStream(ctx context.Context, opts lm.CallOptions) (*lm.Stream, error) {
	req, warnings, err := m.buildRequest(opts, true)
	if err != nil {
		return nil, err
	}

	resp, err := m.transport.PostJSON(ctx, chatCompletionsPath, req, opts.Headers)
	if err != nil {
		m.logger.Debug("stream request failed", zap.Error(err))
		return nil, err
	}

	stream := lm.NewStream(streamEvents(resp.Body, m.logger), resp.Body)
	stream.Warnings = warnings
	stream.Header = resp.Header
	return stream, nil
}
