// Package clock provides the time source used by background schedulers.
//
// Components that arm one-shot timers take a Clock instead of calling the
// time package directly, so tests can drive them with a Manual clock:
//
//   - Real: wall clock backed by time.AfterFunc
//   - Manual: deterministic clock advanced explicitly by the test
package clock
