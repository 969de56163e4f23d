//go:build windows

package hashcat

import (
	"os"
	"os/exec"
)

func configureProcAttr(*exec.Cmd) {}

// Windows has no graceful console signal for a detached child; terminate
// falls through to Kill and the grace timer becomes a no-op.
func terminate(proc *os.Process) error {
	return forceKill(proc)
}

func forceKill(proc *os.Process) error {
	if proc == nil {
		return os.ErrProcessDone
	}
	return proc.Kill()
}
