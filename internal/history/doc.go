// Package history persists a cross-run archive of completed downloads so
// later invocations can skip media that already landed on disk, even when
// the original run directory is gone.
package history
