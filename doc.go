// Package runloop is a work-stealing async task scheduler: a core that
// drives cooperatively-scheduled, poll-based futures to completion
// across a set of worker goroutines, plus a single-threaded
// LocalExecutor sharing the same machinery.
//
// The scheduler itself — the global/local/TLS-handoff queue topology,
// the sleep/notify protocol, and the steal-search loop — is the point of
// this package. The suspendable-computation primitive it drives
// (internal/task) is a minimal, self-contained implementation of the
// poll/waker/schedule-callback contract the scheduler assumes as an
// external collaborator.
//
// Typical use:
//
//	ex, err := runloop.NewExecutor(runloop.WithWorkers(4))
//	if err != nil {
//		// ...
//	}
//	go ex.RunWorkers(ctx)
//	result, err := runloop.Run(ctx, ex, myFuture)
package runloop
