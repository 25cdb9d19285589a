package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, msg)
}

// Retryable reports whether the status is one a caller may retry.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func newStatusError(status int, body []byte) *StatusError {
	se := &StatusError{StatusCode: status, Body: body}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return se
	}
	se.Message = env.Error.Message
	se.Type = env.Error.Type
	switch code := env.Error.Code.(type) {
	case nil:
	case string:
		se.Code = code
	default:
		b, _ := json.Marshal(code)
		se.Code = string(b)
	}
	return se
}
