// Package errs defines the error shapes returned to API clients.
package errs
