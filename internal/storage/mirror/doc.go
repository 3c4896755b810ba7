// Package mirror copies committed records to an external store.
//
// The in-memory store is the source of truth. A mirror receives each
// record after it has been committed there and may lag behind or miss
// writes; nothing reads from it at runtime. Failures are logged and
// dropped.
//
// Drivers:
//
//   - none: Noop, the default
//   - sqlite: relational tables via modernc.org/sqlite
//   - badger: JSON values under per-table key prefixes
//
// Wrap a driver in Async so saves run on a background worker and never
// delay a request.
package mirror
