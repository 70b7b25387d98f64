package vdom

import (
	"context"
	"sync"
)

// Loop serializes work onto the goroutine that owns a Runtime. Other
// goroutines Submit functions; Run executes them one at a time, each
// inside a Batch, so a task's state updates produce at most one
// rerender.
type Loop struct {
	// Locker, if set before Run, is held while each task runs,
	// including the rerender that ends its batch.
	Locker sync.Locker

	rt    *Runtime
	tasks chan func()

	mu      sync.Mutex
	running bool
	done    chan struct{}
	closed  bool
}

// NewLoop returns a loop for rt whose queue holds up to buffer tasks
// before Submit blocks.
func NewLoop(rt *Runtime, buffer int) *Loop {
	if buffer < 0 {
		buffer = 0
	}
	return &Loop{
		rt:    rt,
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Submit queues fn. It blocks while the queue is full and fails with
// ErrLoopTerminated once Run has returned.
func (l *Loop) Submit(fn func()) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrLoopTerminated
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopTerminated
	}
}

// Run executes submitted tasks until ctx is done. Tasks still queued
// when ctx ends are discarded. A loop runs at most once.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	switch {
	case l.closed:
		l.mu.Unlock()
		return ErrLoopTerminated
	case l.running:
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.closed = true
		l.mu.Unlock()
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			l.execute(fn)
		}
	}
}

// execute runs one task. A panicking task is reported and the loop
// keeps going.
func (l *Loop) execute(fn func()) {
	if l.Locker != nil {
		l.Locker.Lock()
		defer l.Locker.Unlock()
	}
	l.rt.Batch(func() {
		if err := protect(fn); err != nil {
			l.rt.report(err)
		}
	})
}
