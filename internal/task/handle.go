package task

import (
	"sync/atomic"
)

// handle states. A handle starts in scheduled (the initial Runnable
// returned by Spawn represents that first unit of work); wake transitions
// idle->scheduled, run transitions scheduled->running->{idle|scheduled}.
const (
	stateIdle uint32 = iota
	stateScheduled
	stateRunning
	stateRunningRepoll
	stateCompleted
)

// handle is the non-generic face of a taskHandle, letting Runnable stay
// an opaque value regardless of the Future's result type.
type handle interface {
	run() bool
	scheduleSelf()
	waker() Waker
}

// taskHandle is the task control block: the result slot, the poll
// function, the waker, and the scheduling callback, all in one place.
type taskHandle[T any] struct {
	future   Future[T]
	schedule func(Runnable)
	w        *taskWaker[T]

	state atomic.Uint32

	result T
	err    error
	done   chan struct{}

	cancelled  atomic.Bool
	onComplete atomic.Pointer[func()]
}

type taskWaker[T any] struct {
	h *taskHandle[T]
}

func (w *taskWaker[T]) Wake() { w.h.wake() }

// wake moves the handle towards being (re)scheduled. Called from
// arbitrary goroutines at arbitrary times, including concurrently with
// run() and after completion.
func (h *taskHandle[T]) wake() {
	for {
		s := h.state.Load()
		switch s {
		case stateIdle:
			if h.state.CompareAndSwap(s, stateScheduled) {
				h.schedule(Runnable{h: h})
				return
			}
		case stateScheduled, stateRunningRepoll, stateCompleted:
			// Already scheduled, already marked for a repoll once the
			// current run finishes, or already done: nothing to do.
			return
		case stateRunning:
			if h.state.CompareAndSwap(s, stateRunningRepoll) {
				return
			}
		}
	}
}

// scheduleSelf invokes the scheduling callback for this handle's current
// Runnable identity. Used both by the initial spawn and by Runnable.Schedule.
func (h *taskHandle[T]) scheduleSelf() {
	h.schedule(Runnable{h: h})
}

func (h *taskHandle[T]) waker() Waker { return h.w }

// run polls the future exactly once, per the Runnable contract: a
// Runnable is consumed by running it. Panics inside the future are
// recovered and surfaced as a PanicError through Task.Await. It reports
// whether the task yielded: true only when it was woken while this poll
// was in flight (from within the poll itself or concurrently from another
// goroutine), and so is rescheduled immediately, on this goroutine, rather
// than going idle to await some later wake.
func (h *taskHandle[T]) run() bool {
	if !h.state.CompareAndSwap(stateScheduled, stateRunning) {
		// Not our turn (e.g. a stray duplicate Run call); do nothing.
		return false
	}

	res, ready, err := h.pollOnce()
	if ready {
		h.result = res
		h.err = err
		h.state.Store(stateCompleted)
		close(h.done)
		if cb := h.onComplete.Load(); cb != nil {
			(*cb)()
		}
		return false
	}

	for {
		s := h.state.Load()
		switch s {
		case stateRunning:
			if h.state.CompareAndSwap(s, stateIdle) {
				return false
			}
		case stateRunningRepoll:
			if h.state.CompareAndSwap(s, stateScheduled) {
				h.schedule(Runnable{h: h})
				return true
			}
		default:
			// Shouldn't happen: only this goroutine drives running/runningRepoll.
			return false
		}
	}
}

func (h *taskHandle[T]) pollOnce() (res T, ready bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ready = true
			err = &PanicError{Value: r}
		}
	}()
	res, ready = h.future.Poll(h.w)
	return
}
