package task

// Waker is invoked to signal that a Future may be able to make progress.
// Invoking a task's Waker while the task is idle calls its scheduling
// callback with a fresh Runnable synchronously, from within Wake; while the
// task is running, the callback is called once that run finishes; while it
// is already scheduled or completed, Wake does nothing.
type Waker interface {
	Wake()
}

// WakerFunc adapts a plain function to a Waker.
type WakerFunc func()

// Wake implements Waker.
func (f WakerFunc) Wake() { f() }
