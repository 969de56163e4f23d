// Package services defines shared utilities consumed by the hashcat
// integration and the session runner.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     (invalid executable, spawn failure, crash, timeout, IO) so every
//     caller reports them through the same event channel.
//   - Context helpers that stamp session and correlation identifiers for
//     logging.
//
// The hashcat subpackage owns command construction, process supervision, and
// output parsing for the external executable.
package services
