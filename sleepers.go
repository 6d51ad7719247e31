package runloop

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/runloop/internal/task"
)

// sleepers is the sleeping-ticker table: a mutex-protected table of
// (id, waker) pairs for tickers currently registered as
// unnotified-asleep, plus a total sleeping count that also includes
// tickers who have been notified but haven't yet consumed that
// notification by waking.
//
// notified mirrors isNotifiedLocked() after every mutation, so
// schedState.notify (the State-level fast path) can read it with a single
// atomic load/CAS instead of taking the mutex on the common case.
type sleepers struct {
	mu       sync.Mutex
	count    int
	order    []uint64 // ids with a currently-unnotified waker, oldest first
	wakers   map[uint64]task.Waker
	freeIDs  []uint64
	nextID   uint64
	notified *atomic.Bool
}

func newSleepers(notified *atomic.Bool) *sleepers {
	notified.Store(true) // no sleepers yet: vacuously notified
	return &sleepers{
		wakers:   make(map[uint64]task.Waker),
		notified: notified,
	}
}

func (s *sleepers) isNotifiedLocked() bool {
	return s.count == 0 || s.count > len(s.order)
}

func (s *sleepers) mirrorLocked() {
	s.notified.Store(s.isNotifiedLocked())
}

// Insert allocates an id, registers w as unnotified-asleep, and returns
// the id.
func (s *sleepers) Insert(w task.Waker) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocIDLocked()
	s.count++
	s.wakers[id] = w
	s.order = append(s.order, id)
	s.mirrorLocked()
	return id
}

func (s *sleepers) allocIDLocked() uint64 {
	if n := len(s.freeIDs); n > 0 {
		id := s.freeIDs[n-1]
		s.freeIDs = s.freeIDs[:n-1]
		return id
	}
	s.nextID++
	return s.nextID
}

// Update replaces id's waker if it is still registered as unnotified
// (returns false: "still unnotified"), or re-registers it if it had
// already been popped by a notification (returns true: "was notified;
// re-registered").
func (s *sleepers) Update(id uint64, w task.Waker) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.wakers[id]; ok {
		s.wakers[id] = w
		s.mirrorLocked()
		return false
	}
	s.wakers[id] = w
	s.order = append(s.order, id)
	s.mirrorLocked()
	return true
}

// Remove decrements count, recycles id, and removes it from the
// unnotified table if present. The returned waker, and ok, reflect
// whether it was still present (absence means a notification already
// consumed it).
func (s *sleepers) Remove(id uint64) (task.Waker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count--
	s.freeIDs = append(s.freeIDs, id)

	w, ok := s.wakers[id]
	if ok {
		delete(s.wakers, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mirrorLocked()
	return w, ok
}

// Notify pops the most-recently-registered still-unnotified waker if
// every currently sleeping ticker is unnotified (wakers.len() == count);
// otherwise a notification is already pending somewhere and it returns
// false.
func (s *sleepers) Notify() (task.Waker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) != s.count || len(s.order) == 0 {
		return nil, false
	}
	last := len(s.order) - 1
	id := s.order[last]
	s.order = s.order[:last]
	w := s.wakers[id]
	delete(s.wakers, id)
	s.mirrorLocked()
	return w, true
}

// IsNotified is the read-side fast path, backed by the atomic mirror.
func (s *sleepers) IsNotified() bool { return s.notified.Load() }
