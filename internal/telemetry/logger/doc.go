// Package logger builds the process-wide structured logger.
//
// It configures log/slog with a JSON or text handler, a level that can
// be changed at runtime, and an attribute filter that masks session
// tokens and hides passwords and other secrets. Request-scoped loggers
// carry the request id.
package logger
