package openaicompat

import (
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"github.com/openai/openai-go/v3/shared/constant"

	"chatbridge/internal/lm"
)

const chatCompletionsPath = "/chat/completions"

type streamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// chatRequest is the request payload for both call shapes.
type chatRequest struct {
	Model       string                                   `json:"model"`
	Messages    []openai.ChatCompletionMessageParamUnion `json:"messages"`
	LogProbs    bool                                     `json:"logprobs"`
	TopLogProbs int                                      `json:"top_logprobs,omitempty"`

	Tools      []openai.ChatCompletionToolUnionParam            `json:"tools,omitempty"`
	ToolChoice *openai.ChatCompletionToolChoiceOptionUnionParam `json:"tool_choice,omitempty"`

	MaxTokens        *int     `json:"max_tokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`
	Stop             []string `json:"stop,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *streamOptions `json:"stream_options,omitempty"`
}

func (m *ChatModel) buildRequest(opts lm.CallOptions, stream bool) (chatRequest, []lm.CallWarning, error) {
	var warnings []lm.CallWarning
	if opts.TopK != nil {
		warnings = append(warnings, lm.CallWarning{Type: lm.WarningUnsupportedSetting, Setting: "topK"})
	}

	messages, err := convertPrompt(opts.Prompt)
	if err != nil {
		return chatRequest{}, nil, err
	}

	req := chatRequest{
		Model:            m.modelID,
		Messages:         messages,
		LogProbs:         m.settings.LogProbs || m.settings.TopLogProbs > 0,
		MaxTokens:        opts.MaxTokens,
		Temperature:      opts.Temperature,
		TopP:             opts.TopP,
		Seed:             opts.Seed,
		Stop:             opts.Stop,
		PresencePenalty:  opts.PresencePenalty,
		FrequencyPenalty: opts.FrequencyPenalty,
	}
	if m.settings.TopLogProbs > 0 {
		req.TopLogProbs = m.settings.TopLogProbs
	}

	switch opts.Mode.Type {
	case lm.ModePlain, "":
	case lm.ModeTools:
		tools, choice, err := prepareTools(opts.Mode.Tools, opts.Mode.ToolChoice)
		if err != nil {
			return chatRequest{}, nil, err
		}
		req.Tools = tools
		req.ToolChoice = choice
	default:
		return chatRequest{}, nil, fmt.Errorf("openaicompat: unsupported mode %q", opts.Mode.Type)
	}

	if stream {
		req.Stream = true
		req.StreamOptions = &streamOptions{IncludeUsage: true}
	}
	return req, warnings, nil
}

func convertPrompt(prompt lm.Prompt) ([]openai.ChatCompletionMessageParamUnion, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt))
	for _, msg := range prompt {
		switch msg.Role {
		case lm.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Text()))

		case lm.RoleUser:
			if len(msg.Content) == 1 && msg.Content[0].Type == lm.PartText {
				messages = append(messages, openai.UserMessage(msg.Content[0].Text))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Content))
			for _, part := range msg.Content {
				switch part.Type {
				case lm.PartText:
					parts = append(parts, openai.TextContentPart(part.Text))
				case lm.PartImage:
					parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: part.ImageURL}))
				default:
					return nil, fmt.Errorf("openaicompat: unsupported %s part in user message", part.Type)
				}
			}
			messages = append(messages, openai.UserMessage(parts))

		case lm.RoleAssistant:
			var text strings.Builder
			var calls []openai.ChatCompletionMessageToolCallUnionParam
			for _, part := range msg.Content {
				switch part.Type {
				case lm.PartText:
					text.WriteString(part.Text)
				case lm.PartToolCall:
					calls = append(calls, openai.ChatCompletionMessageToolCallUnionParam{
						OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
							ID: part.ToolCallID,
							Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
								Name:      part.ToolName,
								Arguments: part.Args,
							},
							Type: constant.Function("function"),
						},
					})
				default:
					return nil, fmt.Errorf("openaicompat: unsupported %s part in assistant message", part.Type)
				}
			}
			if len(calls) == 0 {
				messages = append(messages, openai.AssistantMessage(text.String()))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if text.Len() > 0 {
				assistant.Content.OfString = param.NewOpt(text.String())
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		case lm.RoleTool:
			for _, part := range msg.Content {
				if part.Type != lm.PartToolResult {
					return nil, fmt.Errorf("openaicompat: unsupported %s part in tool message", part.Type)
				}
				messages = append(messages, openai.ToolMessage(string(part.Result), part.ToolCallID))
			}

		default:
			return nil, fmt.Errorf("openaicompat: unsupported role %q", msg.Role)
		}
	}
	return messages, nil
}

// prepareTools converts tool declarations. A named tool choice narrows the
// list to that tool and requires a call.
func prepareTools(tools []lm.Tool, choice lm.ToolChoice) ([]openai.ChatCompletionToolUnionParam, *openai.ChatCompletionToolChoiceOptionUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil, nil
	}

	mode := string(choice.Type)
	if choice.Type == lm.ToolChoiceTool {
		var selected []lm.Tool
		for _, tool := range tools {
			if tool.Name == choice.ToolName {
				selected = append(selected, tool)
			}
		}
		if len(selected) == 0 {
			return nil, nil, fmt.Errorf("openaicompat: tool choice %q is not a declared tool", choice.ToolName)
		}
		tools = selected
		mode = string(lm.ToolChoiceRequired)
	}

	defs := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		fn := shared.FunctionDefinitionParam{
			Name:       tool.Name,
			Parameters: tool.Parameters,
		}
		if tool.Description != "" {
			fn.Description = param.NewOpt(tool.Description)
		}
		if tool.Strict {
			fn.Strict = param.NewOpt(true)
		}
		defs = append(defs, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{Function: fn},
		})
	}

	if mode == "" {
		return defs, nil, nil
	}
	return defs, &openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt(mode)}, nil
}
