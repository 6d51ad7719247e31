// Package task implements the suspendable-computation primitive the
// scheduler core treats as an external collaborator: a poll function, a
// result slot, a waker, and a scheduling callback, bundled behind an
// opaque Runnable handle and a typed Task handle.
//
// No published Go package implements this contract, so it is written
// from scratch here and kept internal: callers of the top-level
// runloop package never see it directly.
package task
