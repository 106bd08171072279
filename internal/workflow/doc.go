// Package workflow drives batch runs through their two phases: resolving
// each query to its first search result, then downloading each resolved row
// sequentially. The ledger on disk is flushed after every row state change
// so an interrupted run resumes exactly where it stopped.
package workflow
