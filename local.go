package runloop

import (
	"context"
	"runtime"
	"sync"

	"github.com/joeycumines/runloop/internal/task"
)

// LocalExecutor is the single-threaded variant. It reuses every other
// piece of machinery but differs in three ways: spawned
// futures need not be safe for concurrent access from multiple
// goroutines; its scheduler callback never attempts the TLS handoff
// fast path, since a single runner has no sibling to hand work to; and
// the executor value itself must not be shared across goroutines — call
// every method from the same goroutine that constructed it.
type LocalExecutor struct {
	cfg  *config
	once sync.Once
	st   *schedState
}

// NewLocalExecutor constructs a LocalExecutor.
func NewLocalExecutor(opts ...Option) (*LocalExecutor, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &LocalExecutor{cfg: cfg}, nil
}

func (ex *LocalExecutor) state() *schedState {
	ex.once.Do(func() {
		ex.st = newSchedState(ex.cfg.logger)
	})
	return ex.st
}

// localSchedule returns a callback that pushes directly to the global
// queue and notifies, skipping
// the TLS fast path entirely — the LocalExecutor variant of the
// scheduling callback.
func localSchedule(st *schedState) func(task.Runnable) {
	return func(r task.Runnable) {
		st.global.Push(r)
		st.notify()
	}
}

// SpawnLocal submits future for execution on ex and returns a handle to
// its eventual result. future need not be safe for concurrent use, but
// must still tolerate being polled from whichever goroutine currently
// owns ex. Returns ErrClosed without spawning if ex has been closed.
func SpawnLocal[T any](ex *LocalExecutor, future task.Future[T]) (task.Task[T], error) {
	st := ex.state()
	return spawnOn(st, future, localSchedule(st))
}

// IsEmpty reports whether every spawned task has finished: it is true
// when no spawned task is still active.
func (ex *LocalExecutor) IsEmpty() bool { return ex.state().active.len() == 0 }

// TryTick pops and runs a single Runnable from the global queue, without
// blocking. It reports whether one ran; always false once ex has been
// closed.
func (ex *LocalExecutor) TryTick() bool {
	st := ex.state()
	if st.isClosed() {
		return false
	}
	r, ok := st.global.Pop()
	if !ok {
		return false
	}
	st.notify()
	r.Run()
	return true
}

// Tick blocks until a single Runnable is available on the global queue,
// runs it, and returns — or returns ctx.Err() if ctx is done first.
// Returns ErrClosed immediately if ex has been closed.
func (ex *LocalExecutor) Tick(ctx context.Context) error {
	st := ex.state()
	if st.isClosed() {
		return ErrClosed
	}
	tk := newTicker(st)
	defer tk.close()

	search := func() (task.Runnable, bool) {
		st.searching.Add(1)
		r, ok := st.global.Pop()
		st.searching.Add(-1)
		return r, ok
	}
	r, ok := tk.runnableWith(ctx, search)
	if !ok {
		return ctx.Err()
	}
	r.Run()
	return nil
}

// RunLocal constructs the (only ever) Runner for ex on the calling
// goroutine and drives it until future resolves or ctx is done, the same
// way Run does for a multi-worker Executor, minus the TLS slot. Returns
// ErrClosed immediately if ex has been closed.
func RunLocal[T any](ctx context.Context, ex *LocalExecutor, future task.Future[T]) (T, error) {
	st := ex.state()
	if st.isClosed() {
		var zero T
		return zero, ErrClosed
	}
	rn := newRunner(st, ex.cfg.localQueueCap, ex.cfg.stealTickInterval)
	defer rn.close()

	t, err := spawnOn(st, future, localSchedule(st))
	if err != nil {
		var zero T
		return zero, err
	}

	for iterations := 0; ; iterations++ {
		select {
		case <-t.Done():
			return t.Await(ctx)
		default:
		}

		r, ok := rn.next(ctx)
		if !ok {
			return t.Await(ctx)
		}
		r.Run()

		if iterations > 0 && iterations%200 == 0 {
			runtime.Gosched()
		}
	}
}

// Close wakes every active task's waker and drains the global queue. It
// is idempotent.
func (ex *LocalExecutor) Close(context.Context) error {
	ex.state().close()
	return nil
}
