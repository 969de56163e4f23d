// Package hashcat wraps the hashcat executable.
//
// Builder turns a CrackRequest into an ordered argument vector, adding the
// always-on flags (keep guessing, no hex escaping, runtime ceiling, explicit
// potfile) and the companion --show, --left and -I invocations. Supervisor
// spawns the child in the executable's directory, waits a bounded time for
// it to launch, streams stdout and stderr chunks on line boundaries, and
// stops it with a graceful signal followed by a forced kill after a grace
// window. ParseChunk extracts status snapshots, inline credentials, and the
// potfile and session-summary markers from a chunk of output.
//
// Nothing in this package owns session state; debounce guards and result
// reconciliation live in the session and cracker packages.
package hashcat
