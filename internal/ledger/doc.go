// Package ledger persists run state as a CSV file with a fixed column schema
// and exposes the row status state machine.
//
// The ledger doubles as a cache and a resume point: every completed row is
// flushed to disk before the next row starts, so a crash loses at most the
// in-flight row. Writes go through a temp-file rename and reads validate both
// the header and the density of row indices, because trusting a malformed
// ledger on resume risks silent data loss.
//
// Treat this package as the single source of truth for row semantics; new
// statuses must be added to the transition table here, never as free-form
// strings elsewhere.
package ledger
