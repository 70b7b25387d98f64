package vdom

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMount is returned when the mount container cannot be found.
	ErrNoMount = errors.New("vdom: mount container not found")
	// ErrNoRoot is returned by Initialize before SetRoot is called.
	ErrNoRoot = errors.New("vdom: no root component")
	// ErrInvalidType is returned when a node or element type cannot be rendered.
	ErrInvalidType = errors.New("vdom: invalid node type")
	// ErrHookOutsideRender is the panic value of a hook called without
	// a render context.
	ErrHookOutsideRender = errors.New("vdom: hook called outside a component render")
	// ErrHookOrder is the panic value of a hook whose slot holds a
	// value of another type, usually because hook calls changed order.
	ErrHookOrder = errors.New("vdom: hook order changed between renders")
	// ErrUpdateLoop is reported when a flush exceeds its pass budget.
	ErrUpdateLoop = errors.New("vdom: too many consecutive rerenders")
	// ErrLoopTerminated is returned by Submit once the loop has stopped.
	ErrLoopTerminated = errors.New("vdom: loop has been terminated")
	// ErrLoopRunning is returned by Run if the loop is already running.
	ErrLoopRunning = errors.New("vdom: loop is already running")
)

// RenderError is a failed render pass.
type RenderError struct {
	Pass uint64
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("vdom: render pass %d: %v", e.Pass, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// EffectError is a failed effect or effect cleanup.
type EffectError struct {
	Owner   string
	Index   int
	Cleanup bool
	Err     error
}

func (e *EffectError) Error() string {
	what := "effect"
	if e.Cleanup {
		what = "effect cleanup"
	}
	return fmt.Sprintf("vdom: %s %s#%d: %v", what, e.Owner, e.Index, e.Err)
}

func (e *EffectError) Unwrap() error { return e.Err }

// HandlerError is a panic raised by an event handler.
type HandlerError struct {
	ID    string
	Event string
	Err   error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("vdom: %s handler on %s: %v", e.Event, e.ID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// protect runs fn and converts a panic into an error.
func protect(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	fn()
	return nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
