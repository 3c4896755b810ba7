// Package snapshot reads and writes the durable snapshot file.
//
// The file is one JSON document with a field per table and a timestamp:
//
//	{
//	  "users":           [[1, {...}], [2, {...}]],
//	  "questions":       [[1, {...}]],
//	  "userAnswers":     [["2-1", {...}]],
//	  "quizSessions":    [],
//	  "rankings":        [],
//	  "surveyAnswers":   [],
//	  "quizCompletions": [],
//	  "timestamp":       "2025-08-10T09:00:00Z"
//	}
//
// Each table is an array of [key, record] pairs. Every write replaces the
// whole file. Writes go to a temporary file in the same directory which
// is then renamed over the old one, so a crash mid-write leaves the
// previous snapshot intact.
package snapshot
