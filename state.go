package runloop

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/runloop/internal/task"
)

// schedState is the data an Executor's workers share: the global queue,
// the sleepers table, the active-task set, and the registry of every
// worker's local queue, keyed by a dense runner id assigned at
// registration — used to pick steal targets.
type schedState struct {
	global       *globalQueue
	sleepers     *sleepers
	notifiedFlag atomic.Bool
	searching    atomic.Int64
	active       *activeSet
	logger       Logger

	regMu        sync.RWMutex
	queues       map[uint64]*localQueue
	nextRunnerID uint64

	closed atomic.Bool
}

func newSchedState(logger Logger) *schedState {
	if logger == nil {
		logger = NewNoopLogger()
	}
	st := &schedState{
		global: newGlobalQueue(),
		queues: make(map[uint64]*localQueue),
		active: newActiveSet(),
		logger: logger,
	}
	st.sleepers = newSleepers(&st.notifiedFlag)
	return st
}

// schedule is the scheduling callback every spawned task's Runnable
// carries: try the TLS fast path first, falling back to a global push
// plus a notify.
func (st *schedState) schedule(r task.Runnable) {
	if tryPushTLS(r) {
		return
	}
	st.global.Push(r)
	st.notify()
}

// notify is the fast-path wake: CAS the mirrored flag from false to
// true, and on success pop and wake at most one sleeping ticker. A
// failed CAS means a notification is already outstanding, so this is a
// no-op.
func (st *schedState) notify() {
	if !st.notifiedFlag.CompareAndSwap(false, true) {
		return
	}
	if w, ok := st.sleepers.Notify(); ok && w != nil {
		w.Wake()
	}
}

// registerQueue assigns a dense runner id to q, making it visible to
// peer steal attempts, and returns that id.
func (st *schedState) registerQueue(q *localQueue) uint64 {
	st.regMu.Lock()
	defer st.regMu.Unlock()
	st.nextRunnerID++
	id := st.nextRunnerID
	st.queues[id] = q
	return id
}

// deregisterQueue removes id from the registry and spills every
// remaining Runnable in q to the global queue, so work queued for a
// worker that is shutting down is never lost.
func (st *schedState) deregisterQueue(id uint64, q *localQueue) {
	st.regMu.Lock()
	delete(st.queues, id)
	st.regMu.Unlock()

	moved := false
	for {
		r, ok := q.Pop()
		if !ok {
			break
		}
		st.global.Push(r)
		moved = true
	}
	if moved {
		st.notify()
	}
}

// peers returns every other registered local queue, ordered by runner
// id for a reproducible scan order — the random element of steal
// selection lives in the caller's choice of starting offset (spec
// §4.5), not in this ordering.
func (st *schedState) peers(selfID uint64) []*localQueue {
	st.regMu.RLock()
	defer st.regMu.RUnlock()

	ids := make([]uint64, 0, len(st.queues))
	for id := range st.queues {
		if id != selfID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*localQueue, len(ids))
	for i, id := range ids {
		out[i] = st.queues[id]
	}
	return out
}

// workerCount reports the number of currently registered local queues.
func (st *schedState) workerCount() int {
	st.regMu.RLock()
	defer st.regMu.RUnlock()
	return len(st.queues)
}

// close marks the state closed, wakes every active task, and drains the
// global queue. It is idempotent.
func (st *schedState) close() {
	if !st.closed.CompareAndSwap(false, true) {
		return
	}
	st.active.wakeAllAndClear()
	st.global.DrainAll(func(task.Runnable) {})
}

func (st *schedState) isClosed() bool { return st.closed.Load() }
