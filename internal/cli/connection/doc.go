// Package connection is the HTTP client quizrally-cli uses to talk to a
// running quizrally-server. It authenticates with a bearer session token
// obtained from /api/auth/login and unwraps the server's JSON envelope.
package connection
