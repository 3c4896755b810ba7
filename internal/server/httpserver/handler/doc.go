// Package handler implements the quiz HTTP API handlers.
//
// Every JSON response uses the Response envelope. Errors carry the
// domain error code in both the envelope and the X-Error-Code header.
package handler
