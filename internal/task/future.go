package task

// Future is a user-supplied suspendable computation. Poll is called at
// most once per Runnable.Run; it must register w (or a clone/closure over
// it) somewhere it can be invoked later if it returns ready=false, since
// that is the only way the task will ever be polled again.
type Future[T any] interface {
	Poll(w Waker) (result T, ready bool)
}

// FuncFuture adapts a poll function to a Future, for callers that would
// rather close over state than define a named type.
type FuncFuture[T any] func(w Waker) (T, bool)

// Poll implements Future.
func (f FuncFuture[T]) Poll(w Waker) (T, bool) { return f(w) }

// Cancellable is implemented by futures that want a best-effort signal on
// Task.Cancel. It is optional: the scheduler core never requires it and
// performs no cancellation of its own (spec: cancellation is cooperative,
// observed on the task's own next poll).
type Cancellable interface {
	Cancel()
}
