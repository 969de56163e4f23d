// Package session holds the per-run state of a cracking session: the
// Idle, Starting, Running, Stopping, Exited state machine, the processed-hash
// set, the one-shot and interval guards that debounce reconciliation and
// auto-show triggers, and a Scheduler whose Close cancels every delayed
// action before the session is torn down.
//
// Guards live on the Session rather than on the runner so a new session
// always starts with fresh state.
package session
