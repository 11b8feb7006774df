package recording

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"whisperarc/internal/logging"
)

// MetaFileName is the per-recording metadata document superwhisper writes.
const MetaFileName = "meta.json"

// ScanOptions are the candidate filters, AND-combined. Zero values disable
// the corresponding filter.
type ScanOptions struct {
	// Modes is a case-insensitive allow-list. Empty means every mode passes.
	Modes []string
	// MinDurationMS excludes recordings shorter than this.
	MinDurationMS int64
	// Since excludes recordings before this instant; the boundary itself is
	// included.
	Since time.Time
}

// Scanner enumerates recording directories under a single root.
type Scanner struct {
	root   string
	logger *slog.Logger
}

// NewScanner constructs a scanner over the given recordings root.
func NewScanner(root string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{root: root, logger: logger.With(logging.String("component", "scanner"))}
}

// Scan returns the filtered candidates sorted ascending by timestamp, with
// the source id as a secondary key so repeated scans of unchanged input are
// stable. A missing root yields an empty result, not an error. A directory
// without meta.json is silently skipped; a directory whose meta.json cannot
// be parsed is skipped with a warning so one corrupt recording never aborts
// the run.
func (s *Scanner) Scan(opts ScanOptions) ([]Recording, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("recordings path does not exist", logging.String("root", s.root))
			return nil, nil
		}
		return nil, fmt.Errorf("read recordings root: %w", err)
	}

	var recordings []Recording
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, ok := s.readOne(entry.Name())
		if !ok {
			continue
		}
		if !matches(rec, opts) {
			continue
		}
		recordings = append(recordings, rec)
	}

	sort.Slice(recordings, func(i, j int) bool {
		if recordings[i].Timestamp.Equal(recordings[j].Timestamp) {
			return recordings[i].SourceID < recordings[j].SourceID
		}
		return recordings[i].Timestamp.Before(recordings[j].Timestamp)
	})

	return recordings, nil
}

func (s *Scanner) readOne(sourceID string) (Recording, bool) {
	metaPath := filepath.Join(s.root, sourceID, MetaFileName)
	raw, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("skipping directory without metadata", logging.String("source_id", sourceID))
		} else {
			s.logger.Warn("failed to read metadata",
				logging.String("source_id", sourceID),
				logging.Error(err))
		}
		return Recording{}, false
	}

	var meta metaFile
	if err := json.Unmarshal(raw, &meta); err != nil {
		s.logger.Warn("failed to parse metadata",
			logging.String("source_id", sourceID),
			logging.Error(err))
		return Recording{}, false
	}

	timestamp, err := ParseTimestamp(meta.Datetime)
	if err != nil {
		s.logger.Warn("rejecting recording with invalid datetime",
			logging.String("source_id", sourceID),
			logging.String("datetime", meta.Datetime),
			logging.Error(err))
		return Recording{}, false
	}

	return Recording{
		SourceID:           sourceID,
		Timestamp:          timestamp,
		Result:             meta.Result,
		RawResult:          meta.RawResult,
		DurationMS:         meta.Duration,
		Segments:           meta.Segments,
		ModeName:           meta.ModeName,
		ModelName:          meta.ModelName,
		LanguageModelName:  meta.LanguageModelName,
		LanguageSelected:   meta.LanguageSelected,
		SystemAudioEnabled: meta.SystemAudioEnabled,
		AppVersion:         meta.AppVersion,
		LLMResult:          meta.LLMResult,
	}, true
}

func matches(rec Recording, opts ScanOptions) bool {
	if len(opts.Modes) > 0 && !modeAllowed(rec.ModeName, opts.Modes) {
		return false
	}
	if opts.MinDurationMS > 0 && rec.DurationMS < opts.MinDurationMS {
		return false
	}
	if !opts.Since.IsZero() && rec.Timestamp.Before(opts.Since) {
		return false
	}
	return true
}

func modeAllowed(mode string, allowed []string) bool {
	for _, candidate := range allowed {
		if strings.EqualFold(strings.TrimSpace(candidate), mode) {
			return true
		}
	}
	return false
}
