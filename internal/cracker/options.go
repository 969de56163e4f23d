package cracker

import (
	"time"

	"lovelyhashcat/internal/config"
	"lovelyhashcat/internal/services/hashcat"
)

// Options configures a Runner.
type Options struct {
	HashcatPath string
	// PotfilePath is used when a request names none; empty falls back to the
	// potfile next to the executable.
	PotfilePath string
	// WorkDir receives temp hash files created from raw hash text.
	WorkDir string
	// LockDir holds the per-potfile instance locks.
	LockDir string

	RuntimeSeconds int
	StatusTimer    int
	HWMonTempAbort int

	StartTimeout     time.Duration
	KillGrace        time.Duration
	RecheckDelay     time.Duration
	AutoShowInterval time.Duration
	SummaryDelay     time.Duration
	CompanionTimeout time.Duration
}

const (
	defaultRecheckDelay     = time.Second
	defaultAutoShowInterval = 5 * time.Second
	defaultSummaryDelay     = 500 * time.Millisecond
	defaultCompanionTimeout = 30 * time.Second
)

// OptionsFromConfig maps the loaded configuration onto runner options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{}
	}
	return Options{
		HashcatPath:      cfg.Paths.HashcatPath,
		PotfilePath:      cfg.PotfilePath(),
		WorkDir:          cfg.Paths.WorkDir,
		LockDir:          cfg.LockDir(),
		RuntimeSeconds:   cfg.Hashcat.RuntimeSeconds,
		StatusTimer:      cfg.Hashcat.StatusTimer,
		HWMonTempAbort:   cfg.Hashcat.HWMonTempAbort,
		StartTimeout:     cfg.Hashcat.StartTimeout(),
		KillGrace:        cfg.Hashcat.KillGrace(),
		RecheckDelay:     cfg.Hashcat.RecheckDelay(),
		AutoShowInterval: cfg.Hashcat.AutoShowInterval(),
		SummaryDelay:     cfg.Hashcat.SummaryDelay(),
	}
}

func (o Options) withDefaults() Options {
	if o.StartTimeout <= 0 {
		o.StartTimeout = hashcat.DefaultStartTimeout
	}
	if o.KillGrace <= 0 {
		o.KillGrace = hashcat.DefaultKillGrace
	}
	if o.RecheckDelay <= 0 {
		o.RecheckDelay = defaultRecheckDelay
	}
	if o.AutoShowInterval <= 0 {
		o.AutoShowInterval = defaultAutoShowInterval
	}
	if o.SummaryDelay <= 0 {
		o.SummaryDelay = defaultSummaryDelay
	}
	if o.CompanionTimeout <= 0 {
		o.CompanionTimeout = defaultCompanionTimeout
	}
	if o.RuntimeSeconds <= 0 {
		o.RuntimeSeconds = hashcat.DefaultRuntimeSeconds
	}
	return o
}
