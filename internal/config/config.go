package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the hashcat executable and the files lovelyhashcat writes.
type Paths struct {
	HashcatPath string `toml:"hashcat_path"`
	PotfilePath string `toml:"potfile_path"`
	WorkDir     string `toml:"work_dir"`
	LogDir      string `toml:"log_dir"`
	OutputDir   string `toml:"output_dir"`
	HistoryDB   string `toml:"history_db"`
}

// Hashcat holds supervision timings and default attack flags. Durations are
// in milliseconds.
type Hashcat struct {
	RuntimeSeconds     int `toml:"runtime_seconds"`
	StatusTimer        int `toml:"status_timer"`
	StartTimeoutMS     int `toml:"start_timeout_ms"`
	KillGraceMS        int `toml:"kill_grace_ms"`
	RecheckDelayMS     int `toml:"recheck_delay_ms"`
	AutoShowIntervalMS int `toml:"auto_show_interval_ms"`
	SummaryDelayMS     int `toml:"summary_delay_ms"`
	HWMonTempAbort     int `toml:"hwmon_temp_abort"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History controls the SQLite session record.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for lovelyhashcat.
//
// Configuration sections:
//   - Paths: hashcat executable, potfile, work/log/output dirs, history database
//   - Hashcat: runtime ceiling, status timer, supervision and debounce timings
//   - Logging: log format and level
//   - History: session history persistence
type Config struct {
	Paths   Paths   `toml:"paths"`
	Hashcat Hashcat `toml:"hashcat"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
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
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
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
		expanded, err := expandPath(path)
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

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
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

// EnsureDirectories creates the work, log, and output directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// PotfilePath resolves the potfile hashcat should use: the configured path
// when it exists, otherwise hashcat.potfile beside the executable when that
// exists, otherwise the configured path (or the executable default when
// nothing is configured).
func (c *Config) PotfilePath() string {
	configured := strings.TrimSpace(c.Paths.PotfilePath)
	if configured != "" && fileExists(configured) {
		return configured
	}
	var colocated string
	if c.Paths.HashcatPath != "" {
		colocated = filepath.Join(filepath.Dir(c.Paths.HashcatPath), potfileName)
		if fileExists(colocated) {
			return colocated
		}
	}
	if configured != "" {
		return configured
	}
	return colocated
}

// LockDir is where per-potfile instance locks live.
func (c *Config) LockDir() string {
	if c.Paths.WorkDir != "" {
		return c.Paths.WorkDir
	}
	return os.TempDir()
}

func (h Hashcat) StartTimeout() time.Duration { return millis(h.StartTimeoutMS) }

func (h Hashcat) KillGrace() time.Duration { return millis(h.KillGraceMS) }

func (h Hashcat) RecheckDelay() time.Duration { return millis(h.RecheckDelayMS) }

func (h Hashcat) AutoShowInterval() time.Duration { return millis(h.AutoShowIntervalMS) }

func (h Hashcat) SummaryDelay() time.Duration { return millis(h.SummaryDelayMS) }

func millis(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func expandPath(pathValue string) (string, error) {
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

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is left untouched unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if !overwrite && fileExists(path) {
		return fmt.Errorf("config %s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
