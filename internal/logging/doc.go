// Package logging assembles the slog loggers used by the CLI and the session
// runner.
//
// It owns the console and JSON handlers, level and output plumbing, the
// standard field keys (component, session_id, event_type, error_hint,
// impact), context helpers that stamp session and correlation identifiers,
// and a progress sampler that keeps hashcat status chatter out of the logs.
// NewNop provides a discarding logger for tests and optional wiring.
package logging
