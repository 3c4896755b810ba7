// Package batch coalesces store mutations into periodic flushes.
//
// A Scheduler tracks a dirty flag and at most one pending timer. The first
// mutation after a flush arms a one-shot timer for the batch interval;
// further mutations inside that window only set the dirty flag. When the
// timer fires the scheduler re-checks the flag and runs the flush function.
// A failed flush leaves the flag set, so the next mutation arms a retry.
//
// The scheduler holds no locks. Every method, and every timer callback,
// must run on the goroutine that owns the store; the owner supplies a
// Dispatcher that moves timer callbacks onto that goroutine.
package batch
