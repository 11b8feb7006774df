package ledger_test

import (
	"context"
	"testing"
	"time"

	"whisperarc/internal/ledger"
	"whisperarc/internal/testsupport"
)

func sampleEntry(sourceID string) ledger.Entry {
	return ledger.Entry{
		SourceID:   sourceID,
		RecordedAt: time.Date(2026, 2, 13, 10, 31, 50, 0, time.UTC),
		Mode:       "meeting",
		DurationMS: 90000,
		FilePath:   "2026/02/2026-02-13-10-31-50.md",
		CommitSHA:  "abc123def456",
		ArchivedAt: time.Date(2026, 2, 13, 11, 0, 0, 0, time.UTC),
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.RecordArchived(ctx, sampleEntry("one")); err != nil {
		t.Fatalf("RecordArchived: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	archived, err := reopened.IsArchived(ctx, "one")
	if err != nil {
		t.Fatalf("IsArchived: %v", err)
	}
	if !archived {
		t.Fatal("expected entry to survive reopen")
	}
}

func TestIsArchivedUnknownID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	archived, err := store.IsArchived(context.Background(), "nope")
	if err != nil {
		t.Fatalf("IsArchived: %v", err)
	}
	if archived {
		t.Fatal("expected unknown id to be unarchived")
	}
}

func TestRecordArchivedUpsertDoesNotGrowCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	entry := sampleEntry("dup")
	if err := store.RecordArchived(ctx, entry); err != nil {
		t.Fatalf("first RecordArchived: %v", err)
	}

	entry.CommitSHA = "fedcba987654"
	entry.FilePath = "2026/02/2026-02-13-10-31-50.md"
	if err := store.RecordArchived(ctx, entry); err != nil {
		t.Fatalf("second RecordArchived: %v", err)
	}

	count, err := store.ArchivedCount(ctx)
	if err != nil {
		t.Fatalf("ArchivedCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1 after upsert, got %d", count)
	}

	fetched, err := store.Entry(ctx, "dup")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if fetched == nil || fetched.CommitSHA != "fedcba987654" {
		t.Fatalf("expected superseding entry, got %#v", fetched)
	}
}

func TestRecordArchivedValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	if err := store.RecordArchived(ctx, ledger.Entry{FilePath: "x.md"}); err == nil {
		t.Fatal("expected error for missing source id")
	}
	if err := store.RecordArchived(ctx, ledger.Entry{SourceID: "x"}); err == nil {
		t.Fatal("expected error for missing file path")
	}
}

func TestEntryRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	want := sampleEntry("roundtrip")
	if err := store.RecordArchived(ctx, want); err != nil {
		t.Fatalf("RecordArchived: %v", err)
	}

	got, err := store.Entry(ctx, "roundtrip")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry")
	}
	if got.Mode != want.Mode || got.DurationMS != want.DurationMS ||
		got.FilePath != want.FilePath || got.CommitSHA != want.CommitSHA {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if !got.RecordedAt.Equal(want.RecordedAt) {
		t.Fatalf("recorded_at mismatch: got %v want %v", got.RecordedAt, want.RecordedAt)
	}

	missing, err := store.Entry(ctx, "absent")
	if err != nil {
		t.Fatalf("Entry(absent): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for absent id, got %#v", missing)
	}
}

func TestEntryWithoutCommitSHA(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	entry := sampleEntry("no-sha")
	entry.CommitSHA = ""
	if err := store.RecordArchived(ctx, entry); err != nil {
		t.Fatalf("RecordArchived: %v", err)
	}
	got, err := store.Entry(ctx, "no-sha")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if got == nil || got.CommitSHA != "" {
		t.Fatalf("expected empty commit sha, got %#v", got)
	}
}

func TestLastRunTimestampTracksLatest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	lastRun, err := store.LastRunTimestamp(ctx)
	if err != nil {
		t.Fatalf("LastRunTimestamp: %v", err)
	}
	if lastRun != nil {
		t.Fatalf("expected nil watermark before any run, got %v", lastRun)
	}

	first := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	second := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	for _, runAt := range []time.Time{first, second} {
		if err := store.RecordRun(ctx, ledger.RunRecord{RunAt: runAt, RecordingsProcessed: 1}); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	lastRun, err = store.LastRunTimestamp(ctx)
	if err != nil {
		t.Fatalf("LastRunTimestamp: %v", err)
	}
	if lastRun == nil || !lastRun.Equal(second) {
		t.Fatalf("expected watermark %v, got %v", second, lastRun)
	}
}

func TestRecentRunsMostRecentFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		record := ledger.RunRecord{
			RunAt:               base.Add(time.Duration(i) * time.Hour),
			RecordingsProcessed: i,
		}
		if err := store.RecordRun(ctx, record); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].RunAt.After(runs[1].RunAt) {
		t.Fatalf("expected most recent first, got %v then %v", runs[0].RunAt, runs[1].RunAt)
	}
	if runs[0].RecordingsProcessed != 3 {
		t.Fatalf("expected latest run processed=3, got %d", runs[0].RecordingsProcessed)
	}
}
