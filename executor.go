package runloop

import (
	"context"
	"runtime"
	"sync"

	"github.com/joeycumines/runloop/internal/task"
)

// Executor is a work-stealing, multi-worker async task scheduler. The
// zero value is not usable; construct with NewExecutor. No worker queue
// or sleepers table is allocated until the first Spawn, TryTick, Tick,
// or Run call.
type Executor struct {
	cfg  *config
	once sync.Once
	st   *schedState
}

// NewExecutor constructs an Executor.
func NewExecutor(opts ...Option) (*Executor, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Executor{cfg: cfg}, nil
}

func (ex *Executor) state() *schedState {
	ex.once.Do(func() {
		ex.st = newSchedState(ex.cfg.logger)
	})
	return ex.st
}

// Spawn submits future for execution and returns a handle to its
// eventual result. Spawn is a package-level function, not a method,
// because Go methods cannot carry their own type parameters. It returns
// ErrClosed without spawning if ex has been closed.
func Spawn[T any](ex *Executor, future task.Future[T]) (task.Task[T], error) {
	return spawnOn(ex.state(), future, ex.state().schedule)
}

// spawnOn is the shared spawn implementation: reserve an active-set
// slot, build the task and its initial Runnable around schedule,
// register the task's waker at that slot with an on-completion guard
// that removes it, and schedule the initial Runnable. schedule is
// parameterized so LocalExecutor can supply a variant that skips the TLS
// fast path entirely. Returns ErrClosed without spawning if st has
// already been closed.
func spawnOn[T any](st *schedState, future task.Future[T], schedule func(task.Runnable)) (task.Task[T], error) {
	if st.isClosed() {
		var zero task.Task[T]
		return zero, ErrClosed
	}
	id := st.active.reserve()
	r, t := task.Spawn(future, schedule)
	st.active.set(id, t.Waker())
	t.OnComplete(func() { st.active.remove(id) })
	schedule(r)
	return t, nil
}

// IsEmpty reports whether every spawned task has finished: it is true
// when no spawned task is still active.
func (ex *Executor) IsEmpty() bool { return ex.state().active.len() == 0 }

// TryTick pops and runs a single Runnable from the global queue only,
// without blocking or searching local/peer queues. It reports whether
// one ran; always false once ex has been closed.
func (ex *Executor) TryTick() bool {
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

// Tick blocks, via a transient Ticker with no local queue of its own,
// until a single Runnable is available on the global queue, runs it,
// and returns — or returns ctx.Err() if ctx is done first. Returns
// ErrClosed immediately if ex has been closed.
func (ex *Executor) Tick(ctx context.Context) error {
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

// Run constructs a Runner bound to the calling goroutine (its local
// queue, its TLS slot) and drives it until future resolves or ctx is
// done, racing the two by checking future's completion between every
// Runnable it executes. Every 200 iterations it cooperates with the Go
// scheduler via runtime.Gosched, in case the local/global queues never
// empty. Returns ErrClosed immediately if ex has been closed.
func Run[T any](ctx context.Context, ex *Executor, future task.Future[T]) (T, error) {
	st := ex.state()
	if st.isClosed() {
		var zero T
		return zero, ErrClosed
	}

	cleanup, _ := installTLS(st.logger)
	defer cleanup()

	rn := newRunner(st, ex.cfg.localQueueCap, ex.cfg.stealTickInterval)
	defer rn.close()

	t, err := spawnOn(st, future, st.schedule)
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
		setTLSYield(r.Run())

		if iterations > 0 && iterations%200 == 0 {
			runtime.Gosched()
		}
	}
}

// RunWorkers starts cfg.workers goroutines (see WithWorkers), each
// calling Run with a future that resolves once ctx is done, and blocks
// until all of them return — the common multi-worker pattern of several
// threads each driving the same executor until a shutdown signal fires.
func (ex *Executor) RunWorkers(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < ex.cfg.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Run[struct{}](ctx, ex, ctxDoneFuture{ctx})
		}()
	}
	wg.Wait()
}

// Close wakes every active task's waker, giving it one more chance to
// observe that the executor is going away, and drains the global queue.
// It is idempotent.
func (ex *Executor) Close(context.Context) error {
	ex.state().close()
	return nil
}
