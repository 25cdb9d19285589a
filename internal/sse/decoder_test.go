package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"chatbridge/internal/lm"
)

func collect(t *testing.T, d *Decoder) ([]string, error) {
	t.Helper()
	var out []string
	for payload, err := range d.Payloads() {
		if err != nil {
			return out, err
		}
		out = append(out, string(payload))
	}
	return out, nil
}

func TestDecoderStopsAtDoneMarker(t *testing.T) {
	input := "data: {\"a\":1}\n\ndata: {\"a\":2}\n\ndata: [DONE]\n\ndata: {\"a\":3}\n\n"
	got, err := collect(t, NewDecoder(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != `{"a":1}` || got[1] != `{"a":2}` {
		t.Fatalf("payloads = %q", got)
	}
}

func TestDecoderBuffersSplitLines(t *testing.T) {
	input := "data: {\"text\":\"Hello, World!\"}\n\ndata: {\"n\":[1,2,3]}\n\ndata: [DONE]\n\n"
	got, err := collect(t, NewDecoder(iotest.OneByteReader(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != `{"text":"Hello, World!"}` {
		t.Fatalf("payloads = %q", got)
	}
}

func TestDecoderIgnoresCommentsAndOtherFields(t *testing.T) {
	input := ": keep-alive\n\nevent: message\nid: 7\ndata: {\"ok\":true}\n\ndata:\n\ndata: [DONE]\n\n"
	got, err := collect(t, NewDecoder(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != `{"ok":true}` {
		t.Fatalf("payloads = %q", got)
	}
}

func TestDecoderJoinsMultipleDataLines(t *testing.T) {
	input := "data: {\"a\":\ndata: 1}\n\n"
	got, err := collect(t, NewDecoder(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "{\"a\":\n1}" {
		t.Fatalf("payloads = %q", got)
	}
}

func TestDecoderCRLF(t *testing.T) {
	input := "data: {\"a\":1}\r\n\r\ndata: [DONE]\r\n\r\n"
	got, err := collect(t, NewDecoder(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("payloads = %q", got)
	}
}

func TestDecoderMalformedJSON(t *testing.T) {
	input := "data: {\"a\":1}\n\ndata: {\"a\":\n\ndata: {\"a\":2}\n\n"
	d := NewDecoder(strings.NewReader(input))
	got, err := collect(t, d)
	var decodeErr *lm.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if string(decodeErr.Data) != `{"a":` {
		t.Fatalf("decode error data = %q", decodeErr.Data)
	}
	if len(got) != 1 {
		t.Fatalf("payloads before error = %q", got)
	}
	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after error, got %v", err)
	}
}

func TestDecoderEOFWithoutDone(t *testing.T) {
	input := "data: {\"a\":1}\n\ndata: {\"a\":2}\n\n"
	got, err := collect(t, NewDecoder(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1] != `{"a":2}` {
		t.Fatalf("payloads = %q", got)
	}
}

func TestDecoderDiscardsUnterminatedTrailingEvent(t *testing.T) {
	for _, input := range []string{
		"data: {\"a\":1}\n\ndata: {\"a\":",
		"data: {\"a\":1}\n\ndata: {\"a\":2}",
	} {
		got, err := collect(t, NewDecoder(strings.NewReader(input)))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if len(got) != 1 || got[0] != `{"a":1}` {
			t.Fatalf("%q: payloads = %q", input, got)
		}
	}
}

func TestDecoderPropagatesReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("data: {\"a\":1}\n\n"), iotest.ErrReader(boom))
	got, err := collect(t, NewDecoder(r))
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("payloads = %q", got)
	}
}
