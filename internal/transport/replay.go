package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
)

// Replay is a deterministic transport for tests and demos. It answers
// streaming requests with streamBody and all others with generateBody, and
// records every payload it was sent.
type Replay struct {
	mu           sync.Mutex
	generateBody []byte
	streamBody   []byte
	requests     [][]byte
}

// NewReplay returns a Replay serving the given bodies.
func NewReplay(generateBody, streamBody string) *Replay {
	return &Replay{generateBody: []byte(generateBody), streamBody: []byte(streamBody)}
}

func (r *Replay) PostJSON(ctx context.Context, path string, body any, header http.Header) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.requests = append(r.requests, payload)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var probe struct {
		Stream bool `json:"stream"`
	}
	_ = json.Unmarshal(payload, &probe)

	h := make(http.Header)
	content := r.generateBody
	h.Set("Content-Type", "application/json")
	if probe.Stream {
		content = r.streamBody
		h.Set("Content-Type", "text/event-stream")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Header:     h,
		Body:       io.NopCloser(bytes.NewReader(content)),
	}, nil
}

// Requests returns the payloads received so far.
func (r *Replay) Requests() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.requests))
	copy(out, r.requests)
	return out
}
