package runloop

import (
	"testing"

	"github.com/joeycumines/runloop/internal/task"
)

func TestLocalQueue_PushPopLIFO(t *testing.T) {
	q := newLocalQueue(4)
	var runnables []task.Runnable
	for i := 0; i < 3; i++ {
		r, _ := runnableMarked(i)
		runnables = append(runnables, r)
		if _, ok := q.Push(false, r); !ok {
			t.Fatalf("unexpected overflow at %d", i)
		}
	}
	for i := 2; i >= 0; i-- {
		r, ok := q.Pop()
		if !ok || r != runnables[i] {
			t.Fatalf("expected LIFO order, broke at %d", i)
		}
	}
}

func TestLocalQueue_OverflowSpillsToCaller(t *testing.T) {
	q := newLocalQueue(2)
	r1, _ := runnableMarked(1)
	r2, _ := runnableMarked(2)
	r3, _ := runnableMarked(3)

	if _, ok := q.Push(false, r1); !ok {
		t.Fatal("unexpected overflow")
	}
	if _, ok := q.Push(false, r2); !ok {
		t.Fatal("unexpected overflow")
	}
	spilled, ok := q.Push(false, r3)
	if ok {
		t.Fatal("expected overflow on third push into capacity-2 queue")
	}
	if spilled != r3 {
		t.Fatal("expected the just-pushed item to be returned for spillage")
	}
}

func TestLocalQueue_MustYieldBias(t *testing.T) {
	q := newLocalQueue(4)
	r1, _ := runnableMarked(1)
	r2, _ := runnableMarked(2)
	q.Push(false, r1)
	// r2 "just yielded": must not become the very next pop.
	q.Push(true, r2)

	first, _ := q.Pop()
	if first != r1 {
		t.Fatal("expected the just-yielded task to not be popped immediately")
	}
	second, _ := q.Pop()
	if second != r2 {
		t.Fatal("expected the just-yielded task to surface on the following pop")
	}
}

func TestLocalQueue_StealGlobal(t *testing.T) {
	g := newGlobalQueue()
	for i := 0; i < 8; i++ {
		r, _ := runnableMarked(i)
		g.Push(r)
	}
	q := newLocalQueue(16)
	n := q.StealGlobal(g)
	if n == 0 {
		t.Fatal("expected to steal at least one item")
	}
	if q.Len() != n {
		t.Fatalf("got local len %d, want %d", q.Len(), n)
	}
	if g.Len() != 8-n {
		t.Fatalf("got global len %d, want %d", g.Len(), 8-n)
	}
}

func TestLocalQueue_StealLocal(t *testing.T) {
	peer := newLocalQueue(16)
	for i := 0; i < 6; i++ {
		r, _ := runnableMarked(i)
		peer.Push(false, r)
	}
	q := newLocalQueue(16)
	n := q.StealLocal(peer)
	if n == 0 {
		t.Fatal("expected to steal at least one item")
	}
	if q.Len() != n {
		t.Fatalf("got local len %d, want %d", q.Len(), n)
	}
	if peer.Len() != 6-n {
		t.Fatalf("got peer len %d, want %d", peer.Len(), 6-n)
	}
}

func TestLocalQueue_StealLocalSelfIsNoop(t *testing.T) {
	q := newLocalQueue(4)
	r, _ := runnableMarked(1)
	q.Push(false, r)
	if n := q.StealLocal(q); n != 0 {
		t.Fatalf("expected stealing from self to be a no-op, got %d", n)
	}
}
