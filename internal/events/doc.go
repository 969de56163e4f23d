// Package events carries the typed notifications a cracking session exposes
// to collaborators: raw output and error lines, status snapshots, found
// passwords, state transitions, notices, errors, and the process-finished
// summary.
//
// Hub keeps a bounded, sequence-numbered buffer that can be filtered by
// session and kind, and pushes each event to registered sinks (the CLI
// renderer and the history store) in publish order.
package events
