package config

import (
	"os"
	"path/filepath"
)

const (
	appDirName           = "borg-tool"
	defaultBorgBin       = "borg"
	defaultProbeWorkers  = 4
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogFileName   = "borg-tool.log"
	defaultJournalName   = "journal.db"
	defaultJournalEnable = true

	// LegacyRepositoryName names the repository synthesized from a top-level `repo` key.
	LegacyRepositoryName = "default"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		BorgBin:      defaultBorgBin,
		MountRoot:    filepath.Join(os.TempDir(), "borg-tool-mounts"),
		ProbeSSH:     true,
		ProbeWorkers: defaultProbeWorkers,
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			File:   filepath.Join(stateHome(), appDirName, defaultLogFileName),
		},
		Journal: Journal{
			Enabled: defaultJournalEnable,
			Path:    filepath.Join(stateHome(), appDirName, defaultJournalName),
		},
	}
}
