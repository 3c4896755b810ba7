// Package domain defines the core domain models for the quiz rally.
//
// Domain models are plain values without IO dependencies. This package contains:
//
//   - User: participant and administrator accounts
//   - Question: the multiple-choice question set
//   - Answer, Completion, Ranking: per-user quiz progress and results
//   - SurveyAnswer: post-quiz feedback that earns bonus points
//   - Session: login sessions keyed by token hash
//   - Errors: coded business errors mapped to HTTP status
//
// JSON tags match the persisted snapshot file, so existing data files
// keep loading unchanged.
package domain
