package runloop

import (
	"testing"

	"github.com/joeycumines/runloop/internal/task"
)

func TestSchedState_ScheduleFallsBackToGlobalWithoutTLS(t *testing.T) {
	st := newSchedState(nil)
	r, _ := runnableMarked(1)
	st.schedule(r)
	if st.global.Len() != 1 {
		t.Fatalf("got global len %d, want 1 (no TLS slot installed)", st.global.Len())
	}
}

func TestSchedState_NotifyWakesAtMostOneSleeper(t *testing.T) {
	st := newSchedState(nil)
	woke := 0
	w1 := task.WakerFunc(func() { woke++ })
	w2 := task.WakerFunc(func() { woke++ })
	st.sleepers.Insert(w1)
	st.sleepers.Insert(w2)

	st.notify()
	if woke != 1 {
		t.Fatalf("got %d wakes, want exactly 1", woke)
	}
	// A second notify, with no intervening sleep, wakes nobody else (spec
	// §8 "Notify idempotence" law): the flag is already true.
	st.notify()
	if woke != 1 {
		t.Fatalf("got %d wakes after a second notify, want still 1", woke)
	}
}

func TestSchedState_RegisterDeregisterQueue(t *testing.T) {
	st := newSchedState(nil)
	q1 := newLocalQueue(8)
	q2 := newLocalQueue(8)
	id1 := st.registerQueue(q1)
	id2 := st.registerQueue(q2)
	if id1 == id2 {
		t.Fatal("expected distinct runner ids")
	}
	if st.workerCount() != 2 {
		t.Fatalf("got %d workers, want 2", st.workerCount())
	}

	peers := st.peers(id1)
	if len(peers) != 1 || peers[0] != q2 {
		t.Fatal("expected peers(id1) to return exactly [q2]")
	}

	r, _ := runnableMarked(1)
	q1.Push(false, r)
	st.deregisterQueue(id1, q1)
	if st.workerCount() != 1 {
		t.Fatalf("got %d workers after deregister, want 1", st.workerCount())
	}
	if st.global.Len() != 1 {
		t.Fatal("expected the deregistered queue's leftover runnable to spill to global")
	}
}

func TestSchedState_CloseWakesActiveTasksAndDrainsGlobal(t *testing.T) {
	st := newSchedState(nil)
	woke := 0
	id := st.active.reserve()
	st.active.set(id, task.WakerFunc(func() { woke++ }))

	r, _ := runnableMarked(1)
	st.global.Push(r)

	st.close()
	if woke != 1 {
		t.Fatalf("got %d wakes, want 1", woke)
	}
	if st.global.Len() != 0 {
		t.Fatal("expected global queue drained on close")
	}
	if !st.isClosed() {
		t.Fatal("expected isClosed true")
	}

	// idempotent
	st.close()
	if woke != 1 {
		t.Fatal("expected close to be idempotent")
	}
}
