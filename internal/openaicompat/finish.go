package openaicompat

import "chatbridge/internal/lm"

func mapFinishReason(reason string) lm.FinishReason {
	switch reason {
	case "stop":
		return lm.FinishStop
	case "length":
		return lm.FinishLength
	case "content_filter":
		return lm.FinishContentFilter
	case "function_call", "tool_calls":
		return lm.FinishToolCalls
	default:
		return lm.FinishOther
	}
}
