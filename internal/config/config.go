package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Recordings describes where superwhisper stores its per-session directories.
type Recordings struct {
	Dir string `toml:"dir"`
}

// Archive describes the git repository that receives rendered documents.
type Archive struct {
	RepoDir string `toml:"repo_dir"`
	Remote  string `toml:"remote"`
	Branch  string `toml:"branch"`
}

// Filters holds the default candidate filters applied to every run.
type Filters struct {
	Modes         []string `toml:"modes"`
	MinDurationMS int      `toml:"min_duration_ms"`
}

// State describes where whisperarc keeps its own durable state.
type State struct {
	Dir string `toml:"dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for whisperarc.
//
// Sections by subsystem:
//   - Recordings: the superwhisper recordings root to scan
//   - Archive: git repository, remote, and branch for archived documents
//   - Filters: default mode allow-list and minimum duration
//   - State: ledger database and lock file location
//   - Logging: log format and level
type Config struct {
	Recordings Recordings `toml:"recordings"`
	Archive    Archive    `toml:"archive"`
	Filters    Filters    `toml:"filters"`
	State      State      `toml:"state"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/whisperarc/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("whisperarc.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Recordings.Dir, err = ExpandPath(c.Recordings.Dir); err != nil {
		return fmt.Errorf("recordings.dir: %w", err)
	}
	if c.Archive.RepoDir, err = ExpandPath(c.Archive.RepoDir); err != nil {
		return fmt.Errorf("archive.repo_dir: %w", err)
	}
	if strings.TrimSpace(c.State.Dir) == "" {
		c.State.Dir = defaultStateDir
	}
	if c.State.Dir, err = ExpandPath(c.State.Dir); err != nil {
		return fmt.Errorf("state.dir: %w", err)
	}

	c.Archive.Remote = strings.TrimSpace(c.Archive.Remote)
	if c.Archive.Remote == "" {
		c.Archive.Remote = defaultRemote
	}
	c.Archive.Branch = strings.TrimSpace(c.Archive.Branch)
	if c.Archive.Branch == "" {
		c.Archive.Branch = defaultBranch
	}

	modes := make([]string, 0, len(c.Filters.Modes))
	for _, mode := range c.Filters.Modes {
		if trimmed := strings.TrimSpace(mode); trimmed != "" {
			modes = append(modes, trimmed)
		}
	}
	c.Filters.Modes = modes

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// EnsureDirectories creates the state directory whisperarc owns. The
// recordings and archive directories belong to external applications and are
// never created here.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.State.Dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.State.Dir, err)
	}
	return nil
}

// LedgerPath returns the path of the SQLite ledger database.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.State.Dir, "ledger.db")
}

// LockPath returns the path of the single-writer run lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.State.Dir, "archiver.lock")
}

// LogPath returns the path of the log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.State.Dir, "whisperarc.log")
}

// GitBinary returns the git executable name.
func (c *Config) GitBinary() string {
	return "git"
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns a cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
