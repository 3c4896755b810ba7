// Package output renders quizrally-cli results.
//
// Three formats are supported: an aligned table for humans, and JSON or
// YAML for scripts. Table output understands the `table:"wide"` struct
// tag; such columns are only shown with --wide.
package output
