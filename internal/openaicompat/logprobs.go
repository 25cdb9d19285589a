package openaicompat

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/respjson"

	"chatbridge/internal/lm"
)

// mapLogProbs keeps order and content as sent. field is the metadata of the
// content list: absent or null maps to nil, an empty list stays an empty,
// non-nil list.
func mapLogProbs(field respjson.Field, content []openai.ChatCompletionTokenLogprob) lm.LogProbs {
	if !field.Valid() {
		return nil
	}
	out := make(lm.LogProbs, 0, len(content))
	for _, tok := range content {
		top := make([]lm.TopLogProb, 0, len(tok.TopLogprobs))
		for _, alt := range tok.TopLogprobs {
			top = append(top, lm.TopLogProb{Token: alt.Token, LogProb: alt.Logprob})
		}
		out = append(out, lm.LogProb{Token: tok.Token, LogProb: tok.Logprob, TopLogProbs: top})
	}
	return out
}
