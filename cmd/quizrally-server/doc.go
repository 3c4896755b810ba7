// Command quizrally-server runs the quiz rally HTTP API.
//
// All data lives in memory and is written to a single JSON snapshot file
// in batches: mutations mark the store dirty, and a flush runs after the
// configured batch interval. User, question and survey changes are
// flushed immediately. On startup the snapshot is loaded, or the store is
// seeded when no readable snapshot exists.
//
// Usage:
//
//	quizrally-server [-config server.yaml]
//
// Every setting can also come from QUIZRALLY_* environment variables,
// with __ separating nesting levels (QUIZRALLY_STORAGE__DATA_DIR).
package main
