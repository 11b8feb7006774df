package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"whisperarc/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Archive.Remote != "origin" || cfg.Archive.Branch != "main" {
		t.Fatalf("unexpected archive defaults: %+v", cfg.Archive)
	}
	if len(cfg.Filters.Modes) != 1 || cfg.Filters.Modes[0] != "meeting" {
		t.Fatalf("unexpected default modes: %v", cfg.Filters.Modes)
	}
	if !filepath.IsAbs(cfg.Recordings.Dir) {
		t.Fatalf("expected expanded recordings dir, got %q", cfg.Recordings.Dir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[recordings]
dir = "` + dir + `/recordings"

[archive]
repo_dir = "` + dir + `/repo"
remote = "  archive  "
branch = ""

[filters]
modes = ["Meeting", " ", "super"]
min_duration_ms = 2500
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Archive.Remote != "archive" {
		t.Fatalf("expected trimmed remote, got %q", cfg.Archive.Remote)
	}
	if cfg.Archive.Branch != "main" {
		t.Fatalf("expected default branch, got %q", cfg.Archive.Branch)
	}
	if len(cfg.Filters.Modes) != 2 {
		t.Fatalf("expected blank mode dropped, got %v", cfg.Filters.Modes)
	}
	if cfg.Filters.MinDurationMS != 2500 {
		t.Fatalf("unexpected min duration: %d", cfg.Filters.MinDurationMS)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty recordings dir", func(c *config.Config) { c.Recordings.Dir = "" }, "recordings.dir"},
		{"empty repo dir", func(c *config.Config) { c.Archive.RepoDir = "" }, "archive.repo_dir"},
		{"negative duration", func(c *config.Config) { c.Filters.MinDurationMS = -1 }, "min_duration_ms"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"branch with space", func(c *config.Config) { c.Archive.Branch = "ma in" }, "archive.branch"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesStateDirOnly(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Recordings.Dir = filepath.Join(base, "recordings")
	cfg.Archive.RepoDir = filepath.Join(base, "repo")
	cfg.State.Dir = filepath.Join(base, "state")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if _, err := os.Stat(cfg.State.Dir); err != nil {
		t.Fatalf("state dir missing: %v", err)
	}
	if _, err := os.Stat(cfg.Recordings.Dir); !os.IsNotExist(err) {
		t.Fatal("recordings dir should not be created")
	}
	if _, err := os.Stat(cfg.Archive.RepoDir); !os.IsNotExist(err) {
		t.Fatal("archive repo dir should not be created")
	}
}
