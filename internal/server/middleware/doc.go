// Package middleware provides HTTP middleware for the SSE and streamable HTTP
// transports: request tracing and metrics, security headers, body limits
// and CORS.
package middleware
