// Package preflight provides readiness checks for the external binaries and
// filesystem paths a batch run depends on.
//
// These checks run in two contexts:
//   - The run command calls RunAll before touching the ledger, failing fast
//     instead of recording a run full of engine failures.
//   - The CLI "ytbatch doctor" command uses the same checks to display
//     environment health.
package preflight
