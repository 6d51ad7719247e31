package runloop

import (
	"context"
	"sync/atomic"

	"github.com/joeycumines/runloop/internal/task"
)

// ticker is a minimal consumer that blocks until a runnable appears and
// returns it. It holds a single atomic "sleeping" id: zero means awake,
// nonzero identifies its registration in the owning state's sleepers
// table.
type ticker struct {
	st       *schedState
	sleeping atomic.Uint64
}

func newTicker(st *schedState) *ticker { return &ticker{st: st} }

// sleep registers w (or re-registers it, if this ticker already has an
// id from a previous call) as the waker to invoke when this ticker should
// wake up. Returns false only when the ticker was already sleeping and
// genuinely still unnotified — meaning the caller should now actually
// suspend; any other outcome means the caller should immediately
// re-attempt its search, to close the race between a producer pushing
// work and this registration.
func (t *ticker) sleep(w task.Waker) bool {
	id := t.sleeping.Load()
	if id == 0 {
		newID := t.st.sleepers.Insert(w)
		t.sleeping.Store(newID)
		return true
	}
	return t.st.sleepers.Update(id, w)
}

// wake clears this ticker's sleeping registration, if any, and returns
// the waker that had been registered for it — which the caller must
// invoke if present (absence means a notification had already consumed
// it). wake never invokes the waker itself.
func (t *ticker) wake() (task.Waker, bool) {
	id := t.sleeping.Swap(0)
	if id == 0 {
		return nil, false
	}
	return t.st.sleepers.Remove(id)
}

// close is the teardown cleanup: if still registered as sleeping, remove
// it, and if that removal discovered we had in fact already been
// notified (Remove's ok==false), re-issue a state-level notify so that
// notification is not silently lost.
func (t *ticker) close() {
	id := t.sleeping.Swap(0)
	if id == 0 {
		return
	}
	if _, ok := t.st.sleepers.Remove(id); !ok {
		t.st.notify()
	}
}

// runnableWith is the core awaiter: it repeatedly calls search until it
// yields a Runnable, sleeping (and re-attempting search once more on
// every registration, per the comment on sleep) in between. Unlike the
// poll-based task.Future primitive, this ticker always runs on a
// dedicated goroutine, so it blocks directly, using a small per-call
// channel as this goroutine's waker target.
//
// Returns ok=false only if ctx is done while genuinely parked.
func (t *ticker) runnableWith(ctx context.Context, search func() (task.Runnable, bool)) (task.Runnable, bool) {
	var wakeCh chan struct{}
	for {
		if r, ok := search(); ok {
			t.wake() // clear any stale registration; discard the waker, we're not suspended
			if t.st.searching.Load() == 0 {
				t.st.notify()
			}
			return r, true
		}

		if wakeCh == nil {
			wakeCh = make(chan struct{}, 1)
		}
		w := task.WakerFunc(func() {
			select {
			case wakeCh <- struct{}{}:
			default:
			}
		})

		if !t.sleep(w) {
			select {
			case <-wakeCh:
				// woken: loop back to re-attempt search.
			case <-ctx.Done():
				t.close()
				return task.Runnable{}, false
			}
		}
		// sleep returned true (fresh registration, or re-registered after
		// having been notified): loop immediately to re-attempt search.
	}
}
