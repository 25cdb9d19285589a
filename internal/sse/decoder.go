// Package sse splits a server-sent event stream into JSON payloads.
package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"

	"github.com/openai/openai-go/v3/packages/ssestream"

	"chatbridge/internal/lm"
)

// DoneMarker is the payload the vendor sends as its last frame.
const DoneMarker = "[DONE]"

// Decoder reads one SSE event at a time. It is not safe for concurrent use.
type Decoder struct {
	events ssestream.Decoder
	done   bool
}

// NewDecoder returns a Decoder reading events from r. Closing the decoder's
// source is left to the caller.
func NewDecoder(r io.Reader) *Decoder {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}
	return &Decoder{events: ssestream.NewDecoder(&http.Response{Body: rc})}
}

// Next returns the JSON payload of the next event. It returns io.EOF after
// the done marker or at the end of input, a *lm.DecodeError for a payload
// that is not JSON, and read errors unchanged. An event still open when the
// input ends is discarded. Once Next has returned an error every later call
// returns io.EOF.
func (d *Decoder) Next() (json.RawMessage, error) {
	for {
		if d.done {
			return nil, io.EOF
		}
		if !d.events.Next() {
			d.done = true
			if err := d.events.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}

		data := bytes.TrimSpace(d.events.Event().Data)
		if len(data) == 0 {
			// keep-alive
			continue
		}
		if string(data) == DoneMarker {
			d.done = true
			return nil, io.EOF
		}
		var payload json.RawMessage
		if err := json.Unmarshal(data, &payload); err != nil {
			d.done = true
			return nil, &lm.DecodeError{Data: data, Err: err}
		}
		return payload, nil
	}
}

// Payloads adapts Next to a range-over-func sequence. The sequence stops
// after the first error; io.EOF is not yielded.
func (d *Decoder) Payloads() iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		for {
			payload, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(payload, err) || err != nil {
				return
			}
		}
	}
}
