package runloop

import (
	"errors"

	"github.com/joeycumines/runloop/internal/task"
)

// ErrClosed is returned by operations attempted after the executor has
// been closed.
var ErrClosed = errors.New("runloop: executor closed")

// ErrReentrantTLS is logged (never returned to a caller) when the TLS
// handoff fast path detects reentrancy — a scheduling callback firing
// while the thread-local slot is already borrowed. The caller always
// falls back to the global queue in this case; it is exposed here only
// so tests and logging can recognize the condition by value.
var ErrReentrantTLS = errors.New("runloop: reentrant TLS handoff, falling back to global queue")

// PanicError wraps a panic value recovered from a spawned future's poll
// method. It is the error surfaced through Task.Await when the future
// panicked instead of completing normally.
type PanicError = task.PanicError
