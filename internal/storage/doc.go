// Package storage provides the storage engine for the quiz rally.
//
// The engine owns the in-memory table store and everything that touches
// it. One loop goroutine runs every read, every write, and every batch
// flush, so the store itself needs no locks.
//
// Architecture:
//
//   - Memory Store: all records, served from memory
//   - Batch Scheduler: coalesces mutations into one flush per window
//   - Snapshot File: full JSON dump, atomically replaced on each flush
//
// Lifecycle:
//
//  1. New starts the loop
//  2. Recover loads the snapshot file, or seeds a fresh store
//  3. Update and View serve requests
//  4. Close runs one final flush and stops the loop
package storage
