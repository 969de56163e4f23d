package config

import (
	"errors"
	"fmt"
	"os"

	"lovelyhashcat/internal/services"
)

// Validate ensures the configuration is usable. The hashcat executable is
// checked separately by ValidateHashcat so commands that never launch it can
// run without one.
func (c *Config) Validate() error {
	if err := c.validateHashcat(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateHashcat() error {
	if c.Hashcat.StatusTimer < 0 {
		return errors.New("hashcat.status_timer must be >= 0")
	}
	if c.Hashcat.HWMonTempAbort < 0 || c.Hashcat.HWMonTempAbort > 200 {
		return errors.New("hashcat.hwmon_temp_abort must be between 0 and 200")
	}
	if c.Hashcat.RuntimeSeconds > 7*24*3600 {
		return errors.New("hashcat.runtime_seconds must not exceed one week")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ValidateHashcat checks that the hashcat executable is configured and present.
func (c *Config) ValidateHashcat() error {
	path := c.Paths.HashcatPath
	if path == "" {
		return services.Wrap(services.ErrInvalidExecutable, "config", "validate",
			fmt.Sprintf("paths.hashcat_path is not set (set %s or edit the config; create one with 'lovelyhashcat config init')", hashcatPathEnv), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrInvalidExecutable, "config", "validate",
			fmt.Sprintf("paths.hashcat_path %s", path), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrInvalidExecutable, "config", "validate",
			fmt.Sprintf("paths.hashcat_path %s is a directory", path), nil)
	}
	return nil
}
