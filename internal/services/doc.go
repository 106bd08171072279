// Package services defines shared utilities consumed by the workflow manager
// and the external engine integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, row indices, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that separate run-fatal
//     failures from failures the workflow downgrades to a row status.
//
// Use these helpers when wiring new orchestration logic so error handling and
// observability stay uniform across the pipeline.
package services
