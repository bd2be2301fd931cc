// Package services defines shared utilities consumed by the workflow phase
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, phase names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run statuses (failed vs rejected vs retryable).
//
// Use these helpers when wiring new phase logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
