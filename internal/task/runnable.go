package task

// Runnable is an opaque, heap-owned scheduling unit. At any instant it is
// referenced by at most one location: a queue, a thread-local pending
// list, or a worker about to run it. Running it polls the underlying
// future once and consumes the Runnable; Schedule hands it to the task's
// scheduling callback instead of running it.
type Runnable struct {
	h handle
}

// Run polls the underlying future once. The Runnable is consumed: a new
// one is produced later, via the scheduling callback, if the future
// yields but is not yet complete. Run reports whether the task yielded:
// true if it was woken while this poll was in flight and so was
// rescheduled before Run returned, rather than completing or going idle
// to await a later wake.
func (r Runnable) Run() bool {
	if r.h == nil {
		return false
	}
	return r.h.run()
}

// Schedule invokes the owning task's scheduling callback with a Runnable
// for this same task, without polling it.
func (r Runnable) Schedule() {
	if r.h == nil {
		return
	}
	r.h.scheduleSelf()
}

// Waker returns a Waker whose invocation eventually results in the
// scheduling callback being called again with a fresh Runnable.
func (r Runnable) Waker() Waker {
	if r.h == nil {
		return WakerFunc(func() {})
	}
	return r.h.waker()
}

// Valid reports whether this Runnable wraps a live task handle.
func (r Runnable) Valid() bool { return r.h != nil }
