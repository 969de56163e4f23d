// Package cracker runs hashcat sessions end to end.
//
// A Runner owns at most one live session. Start validates the request,
// materializes raw hash text into a session-owned temp file, takes a
// per-potfile flock so two runners never drive hashcat against one potfile,
// and spawns the child through the hashcat supervisor. Output chunks become
// events on the hub and may schedule follow-up work on the session scheduler:
// a one-shot potfile recheck after the first recovered hash, a debounced
// summary reconcile, and an interval-guarded `--show` companion run.
//
// When the child exits the runner cancels scheduled work, reconciles one last
// time, publishes the exit, and only then removes temp files and releases the
// lock.
package cracker
