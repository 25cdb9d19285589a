package lm

import (
	"errors"
	"fmt"
)

// ErrIncompleteStream reports a stream that ended without a finish event.
var ErrIncompleteStream = errors.New("lm: stream ended without finish event")

// MappingError is returned when a non-streaming response lacks required structure.
type MappingError struct {
	Reason string
	Raw    []byte
}

func (e *MappingError) Error() string {
	return "lm: invalid response: " + e.Reason
}

// ProtocolError is returned when a stream violates the chunk protocol, such
// as a tool call fragment missing its id or name on first sight.
type ProtocolError struct {
	Index  int
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("lm: protocol violation on tool call %d: %s", e.Index, e.Reason)
}

// DecodeError is returned when a data frame is not valid JSON.
type DecodeError struct {
	Data []byte
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "lm: malformed stream frame"
	}
	return "lm: malformed stream frame: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ProviderError carries an error envelope sent by the vendor inside an
// otherwise successful response.
type ProviderError struct {
	Message string
	Type    string
	Code    string
	Raw     []byte
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("lm: provider error (%s): %s", e.Code, e.Message)
	}
	return "lm: provider error: " + e.Message
}
