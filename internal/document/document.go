package document

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"whisperarc/internal/recording"
)

// Extension is the suffix of every rendered archive document.
const Extension = ".md"

// Renderer converts recordings into markdown documents with YAML
// frontmatter. Rendering is pure apart from the injected clock, which stamps
// the archived_at field and footer.
type Renderer struct {
	now func() time.Time
}

// Option configures the renderer.
type Option func(*Renderer)

// WithClock injects a clock (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRenderer constructs a renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ArchivePath computes the canonical relative storage path for a recording:
// YYYY/MM/YYYY-MM-DD-HH-MM-SS.md, derived solely from the timestamp. Two
// recordings with identical timestamps collide here; the ledger's source id
// key is the dedup boundary, not the path.
func ArchivePath(rec recording.Recording) string {
	ts := rec.Timestamp
	return fmt.Sprintf("%04d/%02d/%04d-%02d-%02d-%02d-%02d-%02d%s",
		ts.Year(), ts.Month(),
		ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(),
		Extension)
}

// Render produces the full markdown document for a recording.
func (r *Renderer) Render(rec recording.Recording) string {
	var sb strings.Builder
	r.writeFrontmatter(&sb, rec)
	r.writeBody(&sb, rec)
	return sb.String()
}

func (r *Renderer) writeFrontmatter(sb *strings.Builder, rec recording.Recording) {
	sb.WriteString("---\n")
	fmt.Fprintf(sb, "datetime: %q\n", rec.Timestamp.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(sb, "mode: %s\n", rec.ModeName)
	fmt.Fprintf(sb, "duration_ms: %d\n", rec.DurationMS)
	fmt.Fprintf(sb, "model: %q\n", rec.ModelName)
	if rec.LanguageModelName != "" {
		fmt.Fprintf(sb, "language_model: %q\n", rec.LanguageModelName)
	}
	fmt.Fprintf(sb, "language: %s\n", rec.LanguageSelected)
	fmt.Fprintf(sb, "system_audio: %t\n", rec.SystemAudioEnabled)
	fmt.Fprintf(sb, "app_version: %q\n", rec.AppVersion)
	fmt.Fprintf(sb, "source_dir: %q\n", rec.SourceID)
	fmt.Fprintf(sb, "archived_at: %q\n", r.now().Format(time.RFC3339))
	sb.WriteString("---\n")
}

func (r *Renderer) writeBody(sb *strings.Builder, rec recording.Recording) {
	fmt.Fprintf(sb, "\n# %s — %s\n\n",
		headingTitle(rec.ModeName), rec.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(sb, "**Mode**: %s | **Duration**: %s\n\n",
		rec.ModeName, FormatDuration(rec.DurationMS))

	transcription := strings.TrimSpace(rec.Result)
	if transcription == "" {
		transcription = strings.TrimSpace(rec.RawResult)
	}
	if transcription != "" {
		fmt.Fprintf(sb, "## Transcription\n\n%s\n\n", transcription)
	}

	if rec.LLMResult != "" {
		fmt.Fprintf(sb, "## Summary\n\n%s\n\n", rec.LLMResult)
	}

	if len(rec.Segments) > 0 {
		sb.WriteString("## Segments\n\n")
		for _, seg := range rec.Segments {
			fmt.Fprintf(sb, "- [%s → %s] %s\n",
				FormatStamp(seg.Start), FormatStamp(seg.End), seg.Text)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(sb, "---\n*Archived: %s*\n", r.now().Format("2006-01-02"))
}

var headingCaser = cases.Title(language.English)

func headingTitle(mode string) string {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return "Recording"
	}
	return headingCaser.String(mode) + " Recording"
}

// FormatDuration renders milliseconds as "XhYmZs" with zero components
// elided leftward; seconds always appear, so the minimum is "0s".
func FormatDuration(durationMS int64) string {
	totalSeconds := durationMS / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatStamp renders fractional seconds as "mm:ss.s" for segment listings.
func FormatStamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	mins := int(seconds) / 60
	secs := seconds - float64(mins*60)
	return fmt.Sprintf("%02d:%04.1f", mins, secs)
}

// CommitMessage builds the one-commit-per-recording message used by the
// archive writer.
func CommitMessage(rec recording.Recording) string {
	return fmt.Sprintf("Archive: %s recording %s\n\nSource: %s\nDuration: %dms\n",
		rec.ModeName,
		rec.Timestamp.Format("2006-01-02 15:04"),
		rec.SourceID,
		rec.DurationMS)
}
