package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"chatbridge/internal/lm"
	"chatbridge/internal/util"
)

const (
	argsPreviewLines = 8
	argsPreviewBytes = 512
)

// StdoutRenderer streams events to a plain text writer.
type StdoutRenderer struct {
	w                io.Writer
	mu               sync.Mutex
	verbose          bool
	sawDelta         bool
	endedWithNewline bool
}

// NewStdoutRenderer creates a renderer for plain text streaming.
func NewStdoutRenderer(w io.Writer, verbose bool) *StdoutRenderer {
	return &StdoutRenderer{w: w, verbose: verbose}
}

func (r *StdoutRenderer) Emit(event lm.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case lm.EventTextDelta:
		if payload, ok := event.Payload.(lm.TextDelta); ok && payload.Text != "" {
			fmt.Fprint(r.w, payload.Text)
			r.sawDelta = true
			r.endedWithNewline = strings.HasSuffix(payload.Text, "\n")
		}
	case lm.EventToolCall:
		if payload, ok := event.Payload.(lm.ToolCallFinal); ok {
			r.breakLine()
			fmt.Fprintf(r.w, "tool: %s (%s)\n", payload.ToolName, payload.ToolCallID)
			if r.verbose {
				fmt.Fprintln(r.w, "args:")
				for _, line := range strings.Split(util.Preview(payload.Args, argsPreviewLines, argsPreviewBytes), "\n") {
					fmt.Fprintf(r.w, "  %s\n", line)
				}
			}
		}
	case lm.EventFinish:
		if payload, ok := event.Payload.(lm.Finish); ok {
			r.breakLine()
			if r.verbose {
				fmt.Fprintf(r.w, "finish: %s (%d prompt tokens, %d completion tokens)\n",
					payload.FinishReason, payload.Usage.PromptTokens, payload.Usage.CompletionTokens)
			}
		}
	}
}

func (r *StdoutRenderer) breakLine() {
	if r.sawDelta && !r.endedWithNewline {
		fmt.Fprintln(r.w)
		r.endedWithNewline = true
	}
}

func (r *StdoutRenderer) Close() error {
	return nil
}
