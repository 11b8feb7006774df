package archiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"whisperarc/internal/config"
	"whisperarc/internal/document"
	"whisperarc/internal/gitrepo"
	"whisperarc/internal/ledger"
	"whisperarc/internal/logging"
	"whisperarc/internal/recording"
)

// ErrLockHeld indicates another archiver process holds the run lock.
var ErrLockHeld = errors.New("another archiver run is in progress")

// Options control a single invocation.
type Options struct {
	// DryRun computes and reports what would happen without writing,
	// committing, or touching the ledger.
	DryRun bool
	// Backfill ignores the run watermark and considers every eligible
	// recording.
	Backfill bool
	// Since overrides the incremental lower bound. Takes precedence over the
	// ledger watermark.
	Since time.Time
	// Modes overrides the configured mode allow-list when non-nil.
	Modes []string
	// MinDurationMS overrides the configured threshold when >= 0; a negative
	// value keeps the configured one.
	MinDurationMS int64
}

// Archiver composes the scanner, renderer, ledger, and archive repository
// into the incremental archival pipeline.
type Archiver struct {
	cfg      *config.Config
	scanner  *recording.Scanner
	renderer *document.Renderer
	store    *ledger.Store
	repo     gitrepo.Committer
	logger   *slog.Logger
	lock     *flock.Flock
	now      func() time.Time
}

// New constructs an archiver. All collaborators are required except the
// logger, which defaults to a no-op.
func New(cfg *config.Config, scanner *recording.Scanner, renderer *document.Renderer, store *ledger.Store, repo gitrepo.Committer, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Archiver{
		cfg:      cfg,
		scanner:  scanner,
		renderer: renderer,
		store:    store,
		repo:     repo,
		logger:   logger.With(logging.String("component", "archiver")),
		lock:     flock.New(cfg.LockPath()),
		now:      time.Now,
	}
}

// Run executes one archival invocation: scan, dedup, archive each new
// candidate in ascending timestamp order, publish once, record run stats.
//
// The crash-safety contract lives in the per-item ordering: the ledger entry
// is written immediately after a successful commit and never before it. A
// crash between the two causes a harmless re-archive-and-overwrite on the
// next run; a crash before the commit leaves the item untouched for retry.
func (a *Archiver) Run(ctx context.Context, opts Options) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	logger := a.logger.With(logging.String("run_id", summary.RunID))

	if !opts.DryRun {
		locked, err := a.lock.TryLock()
		if err != nil {
			return summary, fmt.Errorf("acquire run lock: %w", err)
		}
		if !locked {
			return summary, ErrLockHeld
		}
		defer func() { _ = a.lock.Unlock() }()

		if err := a.repo.EnsureSynced(ctx); err != nil {
			// Offline runs still commit locally and publish later.
			logger.Warn("failed to sync archive repository", logging.Error(err))
		}
	}

	since, err := a.resolveSince(ctx, opts)
	if err != nil {
		return summary, err
	}

	candidates, err := a.scanner.Scan(recording.ScanOptions{
		Modes:         a.resolveModes(opts),
		MinDurationMS: a.resolveMinDuration(opts),
		Since:         since,
	})
	if err != nil {
		return summary, fmt.Errorf("scan recordings: %w", err)
	}
	summary.TotalCandidates = len(candidates)
	logger.Info("scan complete",
		logging.Int("candidates", len(candidates)),
		logging.Bool("dry_run", opts.DryRun))

	for _, rec := range candidates {
		archived, err := a.store.IsArchived(ctx, rec.SourceID)
		if err != nil {
			return summary, fmt.Errorf("query ledger for %s: %w", rec.SourceID, err)
		}
		if archived {
			logger.Debug("skipping already-archived recording",
				logging.String("source_id", rec.SourceID))
			summary.Skipped++
			continue
		}

		outcome := a.archiveOne(ctx, logger, rec, opts.DryRun)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Success {
			summary.Archived++
		} else {
			summary.Failed++
		}
	}

	if !opts.DryRun && summary.Archived > 0 {
		summary.PushAttempted = true
		if err := a.repo.Push(ctx); err != nil {
			// Local commits stay valid; a later run retries the publish.
			logger.Error("failed to push archive repository", logging.Error(err))
		} else {
			summary.PushSucceeded = true
		}
	}

	if !opts.DryRun {
		record := ledger.RunRecord{
			RunAt:               a.now().UTC(),
			RecordingsProcessed: len(candidates),
			RecordingsArchived:  summary.Archived,
			RecordingsFailed:    summary.Failed,
		}
		if err := a.store.RecordRun(ctx, record); err != nil {
			logger.Error("failed to record run statistics", logging.Error(err))
		}
	}

	logger.Info("run complete",
		logging.Int("archived", summary.Archived),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}

func (a *Archiver) archiveOne(ctx context.Context, logger *slog.Logger, rec recording.Recording, dryRun bool) Outcome {
	markdown := a.renderer.Render(rec)
	path := document.ArchivePath(rec)

	if dryRun {
		logger.Info("would archive recording",
			logging.String("source_id", rec.SourceID),
			logging.String("path", path))
		return Outcome{Success: true, SourceID: rec.SourceID, StoragePath: path}
	}

	sha, err := a.repo.WriteAndCommit(ctx, path, markdown, document.CommitMessage(rec))
	if err != nil {
		logger.Error("failed to archive recording",
			logging.String("source_id", rec.SourceID),
			logging.Error(err))
		return Outcome{SourceID: rec.SourceID, Err: err.Error()}
	}

	entry := ledger.Entry{
		SourceID:   rec.SourceID,
		RecordedAt: rec.Timestamp,
		Mode:       rec.ModeName,
		DurationMS: rec.DurationMS,
		FilePath:   path,
		CommitSHA:  sha,
		ArchivedAt: a.now().UTC(),
	}
	if err := a.store.RecordArchived(ctx, entry); err != nil {
		// The commit exists but the ledger does not know; the next run
		// re-archives this id and the upsert supersedes today's attempt.
		logger.Error("failed to record archived recording",
			logging.String("source_id", rec.SourceID),
			logging.Error(err))
		return Outcome{SourceID: rec.SourceID, Err: fmt.Sprintf("record archived: %v", err), StoragePath: path, CommitSHA: sha}
	}

	logger.Info("archived recording",
		logging.String("source_id", rec.SourceID),
		logging.String("path", path),
		logging.String("commit", shortSHA(sha)))
	return Outcome{Success: true, SourceID: rec.SourceID, StoragePath: path, CommitSHA: sha}
}

// resolveSince picks the incremental lower bound: explicit override first,
// then the ledger watermark unless a backfill was requested, else everything.
func (a *Archiver) resolveSince(ctx context.Context, opts Options) (time.Time, error) {
	if !opts.Since.IsZero() {
		return opts.Since, nil
	}
	if opts.Backfill {
		return time.Time{}, nil
	}
	lastRun, err := a.store.LastRunTimestamp(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("read run watermark: %w", err)
	}
	if lastRun == nil {
		return time.Time{}, nil
	}
	return *lastRun, nil
}

func (a *Archiver) resolveModes(opts Options) []string {
	if opts.Modes != nil {
		return opts.Modes
	}
	return a.cfg.Filters.Modes
}

func (a *Archiver) resolveMinDuration(opts Options) int64 {
	if opts.MinDurationMS >= 0 {
		return opts.MinDurationMS
	}
	return int64(a.cfg.Filters.MinDurationMS)
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
