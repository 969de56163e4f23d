package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeHashcat()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.HashcatPath) == "" {
		if value, ok := os.LookupEnv(hashcatPathEnv); ok {
			c.Paths.HashcatPath = value
		}
	}
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.hashcat_path", &c.Paths.HashcatPath},
		{"paths.potfile_path", &c.Paths.PotfilePath},
		{"paths.work_dir", &c.Paths.WorkDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.history_db", &c.Paths.HistoryDB},
	}
	for _, f := range fields {
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

func (c *Config) normalizeHashcat() {
	if c.Hashcat.RuntimeSeconds <= 0 {
		c.Hashcat.RuntimeSeconds = defaultRuntime
	}
	if c.Hashcat.StartTimeoutMS <= 0 {
		c.Hashcat.StartTimeoutMS = defaultStartMS
	}
	if c.Hashcat.KillGraceMS <= 0 {
		c.Hashcat.KillGraceMS = defaultKillGraceMS
	}
	if c.Hashcat.RecheckDelayMS <= 0 {
		c.Hashcat.RecheckDelayMS = defaultRecheckMS
	}
	if c.Hashcat.AutoShowIntervalMS <= 0 {
		c.Hashcat.AutoShowIntervalMS = defaultAutoShowMS
	}
	if c.Hashcat.SummaryDelayMS <= 0 {
		c.Hashcat.SummaryDelayMS = defaultSummaryMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
