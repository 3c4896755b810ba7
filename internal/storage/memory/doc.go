// Package memory provides the in-memory table store for the quiz rally.
//
// A Store holds one Table per record kind. Tables keep plain values, so a
// record read from a table is a copy and changing it has no effect until
// it is Set back.
//
// Thread Safety:
//
// Tables carry no locks. The storage engine owns the store and runs every
// read and write on its loop goroutine; callers outside the engine must go
// through Engine.Update or Engine.View.
//
// Every Set and every effective Delete calls the store's mutation hook with
// the table name. The engine wires that hook to the batch scheduler.
package memory
