package openaicompat

import (
	"encoding/json"
	"errors"
	"io"
	"iter"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"chatbridge/internal/lm"
	"chatbridge/internal/sse"
)

var (
	errStreamConsumed  = errors.New("openaicompat: stream already consumed")
	errChoicesNotArray = errors.New("openaicompat: chunk choices is not an array")
)

// streamState is owned by exactly one stream. It is created when the stream
// starts and dropped when it ends.
type streamState struct {
	tools        *toolCallAccumulator
	finishReason lm.FinishReason
	usage        lm.Usage
	logprobs     lm.LogProbs
	chunks       int
}

func newStreamState() *streamState {
	return &streamState{tools: newToolCallAccumulator(), finishReason: lm.FinishOther}
}

// apply maps one decoded chunk. Events produced before an error in the same
// chunk are returned alongside it.
func (s *streamState) apply(payload json.RawMessage) ([]lm.Event, error) {
	s.chunks++
	var chunk openai.ChatCompletionChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return nil, &lm.DecodeError{Data: append([]byte(nil), payload...), Err: err}
	}
	if perr := providerError(chunk.JSON.ExtraFields, payload); perr != nil {
		return nil, perr
	}
	if present(chunk.JSON.Choices) && !chunk.JSON.Choices.Valid() {
		return nil, &lm.DecodeError{Data: append([]byte(nil), payload...), Err: errChoicesNotArray}
	}
	if chunk.JSON.Usage.Valid() {
		s.usage = toUsage(chunk.Usage)
	}
	if len(chunk.Choices) == 0 {
		return nil, nil
	}

	choice := chunk.Choices[0]
	if choice.FinishReason != "" {
		s.finishReason = mapFinishReason(choice.FinishReason)
	}
	if choice.JSON.Logprobs.Valid() {
		if lp := mapLogProbs(choice.Logprobs.JSON.Content, choice.Logprobs.Content); len(lp) > 0 {
			s.logprobs = append(s.logprobs, lp...)
		}
	}

	var events []lm.Event
	if choice.Delta.JSON.Content.Valid() {
		events = append(events, lm.NewTextDelta(choice.Delta.Content))
	}
	for _, frag := range choice.Delta.ToolCalls {
		out, err := s.tools.apply(frag)
		events = append(events, out...)
		if err != nil {
			return events, err
		}
	}
	return events, nil
}

func (s *streamState) finish() lm.Event {
	return lm.NewFinish(s.finishReason, s.usage, s.logprobs)
}

// streamEvents turns an SSE body into domain events. The body is closed when
// the sequence ends, whether it completes, fails or the consumer stops early.
// A finish event is yielded only after the decoder is exhausted.
func streamEvents(body io.ReadCloser, logger *zap.Logger) iter.Seq2[lm.Event, error] {
	started := false
	return func(yield func(lm.Event, error) bool) {
		if started {
			yield(lm.Event{}, errStreamConsumed)
			return
		}
		started = true
		defer body.Close()

		state := newStreamState()
		dec := sse.NewDecoder(body)
		for payload, err := range dec.Payloads() {
			if err != nil {
				logger.Debug("stream terminated", zap.Int("chunks", state.chunks), zap.Error(err))
				yield(lm.Event{}, err)
				return
			}
			events, err := state.apply(payload)
			for _, ev := range events {
				if !yield(ev, nil) {
					return
				}
			}
			if err != nil {
				logger.Debug("stream terminated", zap.Int("chunks", state.chunks), zap.Error(err))
				yield(lm.Event{}, err)
				return
			}
		}

		logger.Debug("stream finished",
			zap.Int("chunks", state.chunks),
			zap.String("finish_reason", string(state.finishReason)),
			zap.Int("prompt_tokens", state.usage.PromptTokens),
			zap.Int("completion_tokens", state.usage.CompletionTokens),
		)
		yield(state.finish(), nil)
	}
}
