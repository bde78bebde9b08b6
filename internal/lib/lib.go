// Package lib groups the helpers that sit outside the request layers:
// background jobs (asynq), email delivery (Resend), JWT handling, latency
// metrics and small utilities.
package lib
