package render

import "chatbridge/internal/lm"

// Renderer emits stream events to an output target.
type Renderer interface {
	Emit(lm.Event)
	Close() error
}
