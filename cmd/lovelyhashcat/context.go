package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"lovelyhashcat/internal/config"
	"lovelyhashcat/internal/cracker"
	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/history"
	"lovelyhashcat/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger writes to stderr and the log file, or only to errOut when the
// command's error stream has been redirected.
func (c *commandContext) logger(errOut io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if errOut != nil && errOut != io.Writer(os.Stderr) {
		return logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Writer: errOut,
		})
	}
	return logging.NewFromConfig(cfg)
}

// sessionServices bundles the runner with its optional history store.
type sessionServices struct {
	runner  *cracker.Runner
	hub     *events.Hub
	history *history.Store
	logger  *slog.Logger
}

func (s *sessionServices) Close() {
	if s == nil || s.history == nil {
		return
	}
	if err := s.history.Close(); err != nil {
		s.logger.Warn("failed to close history database", logging.Error(err))
	}
}

func (c *commandContext) openServices(cmd *cobra.Command, withHistory bool) (*sessionServices, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	hub := events.NewHub(0)
	svc := &sessionServices{hub: hub, logger: logger}

	var opts []cracker.Option
	if withHistory && cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "session history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the history database or disable [history]"),
			)
		} else {
			svc.history = store
			hub.AddSink(history.NewSink(store, logger))
			opts = append(opts, cracker.WithRecorder(store))
		}
	}
	svc.runner = cracker.NewRunner(cracker.OptionsFromConfig(cfg), hub, logger, opts...)
	return svc, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
