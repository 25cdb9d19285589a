package openaicompat

import (
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"

	"chatbridge/internal/lm"
)

func mapResponse(resp *openai.ChatCompletion, raw []byte) (lm.GenerateResult, error) {
	if perr := providerError(resp.JSON.ExtraFields, raw); perr != nil {
		return lm.GenerateResult{}, perr
	}
	if len(resp.Choices) == 0 {
		return lm.GenerateResult{}, &lm.MappingError{Reason: "response has no choices", Raw: raw}
	}
	choice := resp.Choices[0]

	var logprobs lm.LogProbs
	if choice.JSON.Logprobs.Valid() {
		logprobs = mapLogProbs(choice.Logprobs.JSON.Content, choice.Logprobs.Content)
	}

	result := lm.GenerateResult{
		Text:         choice.Message.Content,
		FinishReason: mapFinishReason(choice.FinishReason),
		Usage:        toUsage(resp.Usage),
		LogProbs:     logprobs,
		Response: lm.ResponseMetadata{
			ID:      resp.ID,
			ModelID: resp.Model,
			Created: createdTime(resp.Created),
		},
	}
	for _, call := range choice.Message.ToolCalls {
		if call.Type != "" && call.Type != "function" {
			continue
		}
		fn := call.AsFunction()
		id := fn.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		result.ToolCalls = append(result.ToolCalls, lm.ToolCall{ID: id, Name: fn.Function.Name, Args: fn.Function.Arguments})
	}
	return result, nil
}
