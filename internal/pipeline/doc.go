// Package pipeline defines shared utilities consumed by the scan stages and
// the batch driver.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, source files, and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run statuses (failed vs review).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the engine.
package pipeline
