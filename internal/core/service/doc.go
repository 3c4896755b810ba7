// Package service implements the quiz application on top of the storage
// engine.
//
// QuizService covers login sessions, user and question administration,
// answering, completion and scoring, the post-quiz survey, rankings,
// integrity checks and CSV exports. Every read and write goes through
// storage.Engine, so the service itself holds no locks. Committed records
// are forwarded to a mirror.Sink on a best-effort basis.
//
// Functions that take a *memory.Store (RankingOf, CheckIntegrity,
// WriteExport) are pure and are also used by the offline CLI against a
// snapshot file.
package service
