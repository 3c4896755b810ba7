// Package httpserver provides the HTTP server for quizrally.
//
// Routes are served by a chi router:
//
//   - Health endpoints: /health, /ready, /metrics
//   - Auth endpoints: /api/auth/register, /api/auth/login, /api/auth/logout
//   - Quiz endpoints: /api/quiz/*, /api/survey/*, /api/ranking
//   - Admin endpoints: /api/admin/*
//
// Participants authenticate with "Authorization: Bearer qrs_...". Admin
// routes additionally require an administrator account.
package httpserver
