package archiver

// Outcome is the per-recording result of one archive attempt. Never
// persisted; it exists only for caller reporting.
type Outcome struct {
	Success     bool
	SourceID    string
	Err         string
	StoragePath string
	CommitSHA   string
}

// Summary aggregates one invocation. Outcomes holds only the recordings that
// were actually attempted; already-archived skips are counted, not listed.
type Summary struct {
	RunID           string
	TotalCandidates int
	Archived        int
	Failed          int
	Skipped         int
	PushAttempted   bool
	PushSucceeded   bool
	Outcomes        []Outcome
}

// FailedOutcomes returns the outcomes that did not succeed, in attempt order.
func (s Summary) FailedOutcomes() []Outcome {
	var failed []Outcome
	for _, outcome := range s.Outcomes {
		if !outcome.Success {
			failed = append(failed, outcome)
		}
	}
	return failed
}
