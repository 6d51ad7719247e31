package runloop

import (
	"sync"

	"github.com/joeycumines/runloop/internal/task"
)

// activeSet tracks every task spawned on an Executor or LocalExecutor
// that has not yet completed, so Close can give them all one more chance
// to observe cancellation by waking every registered waker.
type activeSet struct {
	mu     sync.Mutex
	nextID uint64
	wakers map[uint64]task.Waker
}

func newActiveSet() *activeSet {
	return &activeSet{wakers: make(map[uint64]task.Waker)}
}

// reserve allocates a slot id before the task's waker is known.
func (a *activeSet) reserve() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	return a.nextID
}

// set records w under id, reserved earlier.
func (a *activeSet) set(id uint64, w task.Waker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.wakers[id] = w
}

// remove clears id's entry, called once the task completes.
func (a *activeSet) remove(id uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.wakers, id)
}

// len reports the number of still-registered tasks.
func (a *activeSet) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.wakers)
}

// wakeAllAndClear wakes every still-registered waker and empties the set.
func (a *activeSet) wakeAllAndClear() {
	a.mu.Lock()
	wakers := make([]task.Waker, 0, len(a.wakers))
	for _, w := range a.wakers {
		wakers = append(wakers, w)
	}
	a.wakers = make(map[uint64]task.Waker)
	a.mu.Unlock()

	for _, w := range wakers {
		w.Wake()
	}
}
