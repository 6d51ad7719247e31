package gls

import (
	"sync"
	"testing"
)

func TestSetGetClear(t *testing.T) {
	if _, ok := Get(); ok {
		t.Fatal("expected no slot set initially on this goroutine")
	}
	Set(42)
	v, ok := Get()
	if !ok || v.(int) != 42 {
		t.Fatalf("got (%v, %v), want (42, true)", v, ok)
	}
	Clear()
	if _, ok := Get(); ok {
		t.Fatal("expected slot cleared")
	}
}

func TestPerGoroutineIsolation(t *testing.T) {
	const n = 64
	var wg sync.WaitGroup
	errs := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Set(i)
			v, ok := Get()
			if !ok || v.(int) != i {
				errs <- "mismatch"
				return
			}
			Clear()
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}
