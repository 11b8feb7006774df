package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Meta mirrors the meta.json fields tests care about. Zero-valued optional
// fields are still serialized; the scanner ignores what it does not consume.
type Meta struct {
	Datetime           string    `json:"datetime"`
	Result             string    `json:"result"`
	RawResult          string    `json:"rawResult"`
	Duration           int64     `json:"duration"`
	Segments           []MetaSeg `json:"segments"`
	ModeName           string    `json:"modeName"`
	ModelName          string    `json:"modelName"`
	LanguageModelName  string    `json:"languageModelName,omitempty"`
	LanguageSelected   string    `json:"languageSelected"`
	SystemAudioEnabled bool      `json:"systemAudioEnabled"`
	AppVersion         string    `json:"appVersion"`
	LLMResult          string    `json:"llmResult,omitempty"`
}

// MetaSeg is one segment in a fixture meta.json.
type MetaSeg struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// WriteRecording creates a recording directory with a meta.json under root.
func WriteRecording(t testing.TB, root, sourceID string, meta Meta) {
	t.Helper()

	if meta.ModeName == "" {
		meta.ModeName = "meeting"
	}
	if meta.ModelName == "" {
		meta.ModelName = "whisper-large"
	}
	if meta.LanguageSelected == "" {
		meta.LanguageSelected = "en"
	}
	if meta.AppVersion == "" {
		meta.AppVersion = "2.4.0"
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal meta for %s: %v", sourceID, err)
	}
	WriteRawRecording(t, root, sourceID, raw)
}

// WriteRawRecording writes arbitrary bytes as a recording's meta.json, for
// corrupt-input fixtures.
func WriteRawRecording(t testing.TB, root, sourceID string, raw []byte) {
	t.Helper()

	dir := filepath.Join(root, sourceID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), raw, 0o644); err != nil {
		t.Fatalf("write meta.json for %s: %v", sourceID, err)
	}
}

// WriteEmptyRecording creates a recording directory without meta.json.
func WriteEmptyRecording(t testing.TB, root, sourceID string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Join(root, sourceID), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", sourceID, err)
	}
}
