package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Validation failures are fatal
// setup errors; nothing is scanned or ledgered after one.
func (c *Config) Validate() error {
	if err := c.validateRecordings(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateFilters(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRecordings() error {
	if strings.TrimSpace(c.Recordings.Dir) == "" {
		return fmt.Errorf("recordings.dir is required")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if strings.TrimSpace(c.Archive.RepoDir) == "" {
		return fmt.Errorf("archive.repo_dir is required")
	}
	if strings.ContainsAny(c.Archive.Branch, " \t") {
		return fmt.Errorf("archive.branch %q must not contain whitespace", c.Archive.Branch)
	}
	if strings.ContainsAny(c.Archive.Remote, " \t") {
		return fmt.Errorf("archive.remote %q must not contain whitespace", c.Archive.Remote)
	}
	return nil
}

func (c *Config) validateFilters() error {
	if c.Filters.MinDurationMS < 0 {
		return fmt.Errorf("filters.min_duration_ms must not be negative, got %d", c.Filters.MinDurationMS)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
