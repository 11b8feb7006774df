// Package archiver orchestrates one archival run: candidate selection,
// dedup against the ledger, per-recording render/commit/record, a single
// publish, and run statistics.
//
// Each invocation is independent. A failed item is never ledgered, so it
// remains a candidate for the next run; watermark advancement cannot hide it
// because its own timestamp does not change.
package archiver
