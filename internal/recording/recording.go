package recording

import (
	"errors"
	"time"
)

// Segment is one time-stamped span of the transcript. Start and End are in
// fractional seconds; Start <= End.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Recording is a parsed superwhisper session. One per source directory,
// immutable once scanned. SourceID is the directory name, conventionally a
// Unix-epoch string, and is the dedup key for the whole system.
type Recording struct {
	SourceID           string
	Timestamp          time.Time
	Result             string
	RawResult          string
	DurationMS         int64
	Segments           []Segment
	ModeName           string
	ModelName          string
	LanguageModelName  string
	LanguageSelected   string
	SystemAudioEnabled bool
	AppVersion         string
	LLMResult          string
}

// metaFile mirrors the fields consumed from meta.json. Extra fields in the
// document are ignored.
type metaFile struct {
	Datetime           string    `json:"datetime"`
	Result             string    `json:"result"`
	RawResult          string    `json:"rawResult"`
	Duration           int64     `json:"duration"`
	Segments           []Segment `json:"segments"`
	ModeName           string    `json:"modeName"`
	ModelName          string    `json:"modelName"`
	LanguageModelName  string    `json:"languageModelName"`
	LanguageSelected   string    `json:"languageSelected"`
	SystemAudioEnabled bool      `json:"systemAudioEnabled"`
	AppVersion         string    `json:"appVersion"`
	LLMResult          string    `json:"llmResult"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp accepts the ISO-8601 variants superwhisper writes, with or
// without fractional seconds and zone offset.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
