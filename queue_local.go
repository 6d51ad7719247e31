package runloop

import (
	"sync"
	"unsafe"

	"github.com/joeycumines/runloop/internal/task"
)

// localQueue is a bounded, per-worker ring. Its owner pops and pushes
// from the hot (tail) end for LIFO cache locality; peers steal from the
// cold (head) end so stolen work is always the oldest available.
//
// A Chase-Lev-style deque would make the owner side wait-free and the
// stealer side lock-free. This implementation instead protects the ring
// with a single mutex shared by owner and stealers: no lock-free deque
// implementation exists anywhere in the retrieved reference pack to
// ground a hand-rolled one on, and getting a lock-free deque subtly
// wrong is a correctness hazard with no test run to catch it. The mutex
// is held for O(1) work in every path, so it does not change the
// algorithm's asymptotic behavior, only its constant factor under
// contention.
type localQueue struct {
	mu   sync.Mutex
	buf  []task.Runnable
	h, t uint64 // head (cold, stolen from) <= tail (hot, owner end)
}

func newLocalQueue(capacity int) *localQueue {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		capacity = DefaultLocalQueueCapacity
	}
	return &localQueue{buf: make([]task.Runnable, capacity)}
}

func (q *localQueue) mask(x uint64) uint64 { return x & (uint64(len(q.buf)) - 1) }

func (q *localQueue) lenLocked() uint64 { return q.t - q.h }

// Push appends r at the tail. If mustYield is true and the ring is
// already non-empty, r is inserted one slot before the tail instead,
// swapping places with the previously-hottest item — so a task that just
// yielded is not the very next one its own worker pops.
//
// On overflow, Push returns (r, false): the caller must spill r to the
// global queue.
func (q *localQueue) Push(mustYield bool, r task.Runnable) (task.Runnable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.lenLocked() == uint64(len(q.buf)) {
		return r, false
	}

	if mustYield && q.lenLocked() > 0 {
		prevTop := q.buf[q.mask(q.t-1)]
		q.buf[q.mask(q.t-1)] = r
		q.buf[q.mask(q.t)] = prevTop
		q.t++
		return task.Runnable{}, true
	}

	q.buf[q.mask(q.t)] = r
	q.t++
	return task.Runnable{}, true
}

// Pop removes and returns the item at the tail (owner side), if any.
func (q *localQueue) Pop() (task.Runnable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.lenLocked() == 0 {
		return task.Runnable{}, false
	}
	q.t--
	idx := q.mask(q.t)
	r := q.buf[idx]
	q.buf[idx] = task.Runnable{}
	return r, true
}

// Len reports the current occupancy.
func (q *localQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.lenLocked())
}

// StealGlobal moves up to half this queue's capacity from g's head into
// this queue's tail. Returns the number moved.
func (q *localQueue) StealGlobal(g *globalQueue) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	free := uint64(len(q.buf)) - q.lenLocked()
	want := uint64(len(q.buf)) / 2
	if want > free {
		want = free
	}
	if want == 0 {
		return 0
	}
	return g.DrainUpTo(int(want), func(r task.Runnable) {
		q.buf[q.mask(q.t)] = r
		q.t++
	})
}

// StealLocal moves half of peer's outstanding items, rounded down but at
// least one — the oldest ones, from peer's head — into this queue's tail,
// limited by this queue's free space. Returns the number moved.
func (q *localQueue) StealLocal(peer *localQueue) int {
	if peer == q {
		return 0
	}

	// Lock order: always the lower-address queue first, to avoid
	// deadlocking a pair of workers stealing from each other
	// simultaneously.
	first, second := q, peer
	if uintptr(unsafe.Pointer(peer)) < uintptr(unsafe.Pointer(q)) {
		first, second = peer, q
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	if first != second {
		second.mu.Lock()
		defer second.mu.Unlock()
	}

	n := peer.lenLocked()
	if n == 0 {
		return 0
	}
	half := n / 2
	if half == 0 {
		half = 1
	}
	free := uint64(len(q.buf)) - q.lenLocked()
	if half > free {
		half = free
	}
	moved := uint64(0)
	for moved < half {
		idx := peer.mask(peer.h)
		r := peer.buf[idx]
		peer.buf[idx] = task.Runnable{}
		peer.h++

		q.buf[q.mask(q.t)] = r
		q.t++
		moved++
	}
	return int(moved)
}
