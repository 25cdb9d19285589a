package openaicompat

import (
	"encoding/json"
	"strings"

	"github.com/openai/openai-go/v3"

	"chatbridge/internal/lm"
)

type pendingToolCall struct {
	id        string
	name      string
	args      strings.Builder
	finalized bool
}

// toolCallAccumulator tracks partial tool calls by stream index for one
// stream. Argument text for an index is the concatenation of every slice seen
// for it, in arrival order.
type toolCallAccumulator struct {
	calls map[int64]*pendingToolCall
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{calls: make(map[int64]*pendingToolCall)}
}

// apply folds one fragment in and returns the events it produces: a delta
// for a non-empty argument slice, then a final event the first time the
// accumulated arguments parse as JSON. A fragment whose arguments are empty
// or missing, first or not, produces no delta; dropping it leaves the
// concatenated text unchanged.
func (a *toolCallAccumulator) apply(frag openai.ChatCompletionChunkChoiceDeltaToolCall) ([]lm.Event, error) {
	call, ok := a.calls[frag.Index]
	if !ok {
		if frag.Type != "" && frag.Type != "function" {
			return nil, &lm.ProtocolError{Index: int(frag.Index), Reason: "unsupported tool call type " + frag.Type}
		}
		if !frag.JSON.ID.Valid() || frag.ID == "" {
			return nil, &lm.ProtocolError{Index: int(frag.Index), Reason: "missing id"}
		}
		if !frag.Function.JSON.Name.Valid() || frag.Function.Name == "" {
			return nil, &lm.ProtocolError{Index: int(frag.Index), Reason: "missing function name"}
		}
		call = &pendingToolCall{id: frag.ID, name: frag.Function.Name}
		a.calls[frag.Index] = call
	}

	slice := frag.Function.Arguments
	if slice == "" {
		return nil, nil
	}
	call.args.WriteString(slice)
	events := []lm.Event{lm.NewToolCallDelta(call.id, call.name, slice)}

	// Completion is detected by parsing the accumulated text, never by
	// counting braces.
	if !call.finalized {
		args := call.args.String()
		if json.Valid([]byte(args)) {
			call.finalized = true
			events = append(events, lm.NewToolCall(call.id, call.name, args))
		}
	}
	return events, nil
}
