// Package middleware holds the global and route-level echo middleware:
// request ids, request-scoped logging, tracing, JWT authentication with
// role checks, rate limiting, latency recording and the global error handler.
package middleware
