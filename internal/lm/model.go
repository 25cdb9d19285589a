package lm

import (
	"context"
	"io"
	"iter"
	"net/http"
	"sync"
)

// Model is a vendor-neutral language model.
type Model interface {
	Provider() string
	ModelID() string
	DoGenerate(ctx context.Context, opts CallOptions) (GenerateResult, error)
	DoStream(ctx context.Context, opts CallOptions) (*Stream, error)
}

// Stream is one in-flight streaming call. Events must be ranged over by a
// single consumer. A sequence that ends without a Finish event is incomplete.
type Stream struct {
	Warnings []CallWarning
	Header   http.Header

	seq       iter.Seq2[Event, error]
	body      io.Closer
	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps seq. body is closed by Close and should also be closed by
// seq itself once it finishes.
func NewStream(seq iter.Seq2[Event, error], body io.Closer) *Stream {
	return &Stream{seq: seq, body: body}
}

func (s *Stream) Events() iter.Seq2[Event, error] {
	return s.seq
}

// Close releases the underlying transport. It may be called from another
// goroutine to abort a stream in progress.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		if s.body != nil {
			s.closeErr = s.body.Close()
		}
	})
	return s.closeErr
}
