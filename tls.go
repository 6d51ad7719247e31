package runloop

import (
	"github.com/joeycumines/runloop/internal/gls"
	"github.com/joeycumines/runloop/internal/task"
)

// tlsSlot is installed in the current goroutine's gls slot for the
// duration of a single Run (or runner.run) call: it lets a task that reschedules
// itself synchronously, from within its own poll on this very goroutine,
// skip the global queue and sleepers.Notify round-trip entirely. It is
// touched only by the goroutine that owns it, so it needs no locking of
// its own.
type tlsSlot struct {
	pending   []task.Runnable
	draining  bool
	justYield bool
}

// installTLS installs a fresh slot for the current goroutine, unless one
// is already installed — meaning this is a reentrant Run call on the
// same goroutine (a future synchronously driving the executor that is
// already driving it). In that case it logs ErrReentrantTLS and leaves
// the outer slot alone; schedule callbacks during the nested call simply
// fall back to the global queue, same as if no slot existed at all.
//
// Returns the cleanup to defer and whether this call actually installed
// the slot (vs. finding one already there).
func installTLS(logger Logger) (cleanup func(), installed bool) {
	if _, ok := gls.Get(); ok {
		logger.Log(LevelDebug, "reentrant TLS handoff", map[string]any{"error": ErrReentrantTLS.Error()})
		return func() {}, false
	}
	gls.Set(&tlsSlot{})
	return func() { gls.Clear() }, true
}

// tryPushTLS attempts the fast path: append r to the current goroutine's
// pending slot, if one is installed and not presently being drained. It
// reports whether r was accepted; the caller falls back to the global
// queue plus a notify on false.
func tryPushTLS(r task.Runnable) bool {
	v, ok := gls.Get()
	if !ok {
		return false
	}
	slot := v.(*tlsSlot)
	if slot.draining {
		return false
	}
	slot.pending = append(slot.pending, r)
	return true
}

// setTLSYield records whether the task just run on the current goroutine
// yielded: rescheduled itself synchronously rather than completing or
// going idle. The next drainTLS call on this goroutine that finds pending
// items consumes it as the must_yield bias for those items; a drain with
// nothing pending leaves it in place. A no-op if no slot is installed.
func setTLSYield(yielded bool) {
	v, ok := gls.Get()
	if !ok {
		return
	}
	v.(*tlsSlot).justYield = yielded
}

// drainTLS moves every Runnable accumulated in the current goroutine's
// pending slot into q, spilling to global on local overflow. Items are
// pushed with the must_yield bias recorded by the most recent
// setTLSYield call, so a task that just yielded is not immediately
// re-popped by its own worker. It is a no-op if no slot is installed on
// this goroutine.
func drainTLS(q *localQueue, global *globalQueue) {
	v, ok := gls.Get()
	if !ok {
		return
	}
	slot := v.(*tlsSlot)
	if len(slot.pending) == 0 {
		return
	}

	slot.draining = true
	items := slot.pending
	mustYield := slot.justYield
	slot.pending = nil
	slot.justYield = false
	slot.draining = false

	for _, r := range items {
		if leftover, pushed := q.Push(mustYield, r); !pushed {
			global.Push(leftover)
		}
	}
}
