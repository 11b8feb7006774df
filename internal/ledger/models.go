package ledger

import "time"

// Entry records one archived recording. Keyed by source id; re-archiving the
// same id replaces the previous entry rather than appending, which keeps
// re-runs idempotent at the cost of attempt history.
type Entry struct {
	SourceID   string
	RecordedAt time.Time
	Mode       string
	DurationMS int64
	FilePath   string
	// CommitSHA may be empty when the entry was written for a run whose
	// versioning step did not produce an identifier.
	CommitSHA  string
	ArchivedAt time.Time
}

// RunRecord is one append-only row per real (non-dry-run) invocation. The
// latest RunAt is the default incremental watermark for the next run.
type RunRecord struct {
	RunAt               time.Time
	RecordingsProcessed int
	RecordingsArchived  int
	RecordingsFailed    int
}
