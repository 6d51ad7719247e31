package runloop

import (
	"context"
	"math/rand/v2"

	"github.com/joeycumines/runloop/internal/task"
)

// runner is one worker's execution context: a registered local queue, a
// ticker used to park when no work is found, and a tick counter used to
// force a periodic fairness steal from the global queue even when the
// local queue still has work.
type runner struct {
	st         *schedState
	queue      *localQueue
	ticker     *ticker
	id         uint64
	ticks      int
	stealEvery int
}

func newRunner(st *schedState, capacity, stealEvery int) *runner {
	q := newLocalQueue(capacity)
	r := &runner{
		st:         st,
		queue:      q,
		ticker:     newTicker(st),
		stealEvery: stealEvery,
	}
	r.id = st.registerQueue(q)
	return r
}

// close deregisters this runner's queue (spilling any remaining work to
// the global queue) and releases its ticker's sleeping registration.
func (r *runner) close() {
	r.st.deregisterQueue(r.id, r.queue)
	r.ticker.close()
}

// search implements the composite lookup order: drain any TLS handoff
// first, then (periodically, for fairness) a global-queue steal, then the
// local queue, then an ordinary global pop, then a global-queue steal,
// then steal from peers starting at a random offset.
func (r *runner) search() (task.Runnable, bool) {
	drainTLS(r.queue, r.st.global)

	if r.stealEvery > 0 && r.ticks > 0 && r.ticks%r.stealEvery == 0 {
		r.queue.StealGlobal(r.st.global)
	}

	if run, ok := r.queue.Pop(); ok {
		return run, true
	}

	if run, ok := r.st.global.Pop(); ok {
		return run, true
	}
	if r.queue.StealGlobal(r.st.global) > 0 {
		if run, ok := r.queue.Pop(); ok {
			return run, true
		}
	}

	peers := r.st.peers(r.id)
	if len(peers) > 0 {
		start := rand.IntN(len(peers))
		for i := 0; i < len(peers); i++ {
			p := peers[(start+i)%len(peers)]
			if r.queue.StealLocal(p) > 0 {
				if run, ok := r.queue.Pop(); ok {
					return run, true
				}
			}
		}
	}

	return task.Runnable{}, false
}

// next blocks (respecting ctx) until a Runnable is available. It wraps
// each search attempt with the searching-worker accounting notify's
// baton check relies on: increment before, decrement after, so
// "searching_count == 0" accurately reflects whether any *other* worker
// is currently looking for work.
func (r *runner) next(ctx context.Context) (task.Runnable, bool) {
	search := func() (task.Runnable, bool) {
		r.st.searching.Add(1)
		run, ok := r.search()
		r.st.searching.Add(-1)
		return run, ok
	}
	run, ok := r.ticker.runnableWith(ctx, search)
	if ok {
		r.ticks++
	}
	return run, ok
}

// run drives this runner until ctx is done, executing every Runnable it
// finds, with the TLS handoff slot installed for its duration.
func (r *runner) run(ctx context.Context) {
	cleanup, _ := installTLS(r.st.logger)
	defer cleanup()

	for {
		run, ok := r.next(ctx)
		if !ok {
			return
		}
		setTLSYield(run.Run())
	}
}
