package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath  = "~/.config/lovelyhashcat/config.toml"
	projectConfigName  = "lovelyhashcat.toml"
	potfileName        = "hashcat.potfile"
	hashcatPathEnv     = "HASHCAT_PATH"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultRuntime     = 60
	defaultStartMS     = 3000
	defaultKillGraceMS = 2000
	defaultRecheckMS   = 1000
	defaultAutoShowMS  = 5000
	defaultSummaryMS   = 500
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	data := dataDir()
	return Config{
		Paths: Paths{
			WorkDir:   filepath.Join(data, "work"),
			LogDir:    filepath.Join(data, "logs"),
			OutputDir: filepath.Join(data, "results"),
			HistoryDB: filepath.Join(data, "history.db"),
		},
		Hashcat: Hashcat{
			RuntimeSeconds:     defaultRuntime,
			StartTimeoutMS:     defaultStartMS,
			KillGraceMS:        defaultKillGraceMS,
			RecheckDelayMS:     defaultRecheckMS,
			AutoShowIntervalMS: defaultAutoShowMS,
			SummaryDelayMS:     defaultSummaryMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{Enabled: true},
	}
}

func dataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "lovelyhashcat")
	}
	return filepath.Join("~", ".local", "share", "lovelyhashcat")
}
