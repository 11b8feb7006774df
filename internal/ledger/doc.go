// Package ledger persists which recordings have been archived and the
// run-level statistics that drive incremental scans.
//
// The ledger is crash-safe by construction: an entry exists only after the
// corresponding document was committed, and re-recording the same source id
// is an upsert, so a crash between commit and record costs at most one
// harmless re-archive on the next run.
package ledger
