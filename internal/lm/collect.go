package lm

import (
	"iter"
	"strings"
)

// Collect drains events into a GenerateResult. If the sequence yields an
// error, Collect returns it together with everything gathered so far. If the
// sequence ends without a Finish event, the error is ErrIncompleteStream.
func Collect(events iter.Seq2[Event, error]) (GenerateResult, error) {
	var (
		text     strings.Builder
		result   GenerateResult
		finished bool
	)
	for ev, err := range events {
		if err != nil {
			result.Text = text.String()
			return result, err
		}
		switch p := ev.Payload.(type) {
		case TextDelta:
			text.WriteString(p.Text)
		case ToolCallFinal:
			result.ToolCalls = append(result.ToolCalls, ToolCall{ID: p.ToolCallID, Name: p.ToolName, Args: p.Args})
		case Finish:
			result.FinishReason = p.FinishReason
			result.Usage = p.Usage
			result.LogProbs = p.LogProbs
			finished = true
		}
	}
	result.Text = text.String()
	if !finished {
		return result, ErrIncompleteStream
	}
	return result, nil
}
