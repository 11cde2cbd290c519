// Package services defines shared utilities consumed by the transformation
// pipeline, the HTTP handlers, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp user IDs, job IDs, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the categories the API surfaces (validation vs remote vs missing).
//
// Use these helpers when wiring new components so operational behaviour
// (error handling, observability) stays uniform across the service.
package services
