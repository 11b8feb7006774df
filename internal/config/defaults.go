package config

const (
	defaultRecordingsDir = "~/Documents/superwhisper/recordings"
	defaultRepoDir       = "~/voice-archive"
	defaultRemote        = "origin"
	defaultBranch        = "main"
	defaultStateDir      = "~/.local/share/whisperarc"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultMode          = "meeting"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Recordings: Recordings{
			Dir: defaultRecordingsDir,
		},
		Archive: Archive{
			RepoDir: defaultRepoDir,
			Remote:  defaultRemote,
			Branch:  defaultBranch,
		},
		Filters: Filters{
			Modes: []string{defaultMode},
		},
		State: State{
			Dir: defaultStateDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
