// Package services defines shared utilities consumed by the sync pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp sync run IDs and queue step names for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     storage failures, authentication failures, and remote API failures apart.
//
// Use these helpers when wiring new sync logic so operational behaviour stays
// uniform across the pipeline.
package services
