package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CheckHashcatLayout reports whether the files hashcat resolves relative to
// its own directory are present. Hashcat loads OpenCL kernels and modules from
// the directory containing the executable, which is why sessions run with
// that directory as their working directory.
func CheckHashcatLayout(hashcatCommand string) []Status {
	binary := strings.TrimSpace(hashcatCommand)
	resolved := binary
	if binary != "" {
		if path, err := exec.LookPath(binary); err == nil {
			resolved = path
		}
	}
	dir := ""
	if resolved != "" {
		dir = filepath.Dir(resolved)
	}

	return []Status{
		siblingStatus(dir, "OpenCL", "Kernel sources loaded at runtime", true, false),
		siblingStatus(dir, "modules", "Hash-mode plugins", true, false),
		siblingStatus(dir, "hashcat.potfile", "Default potfile beside the executable", false, true),
	}
}

func siblingStatus(dir, name, description string, wantDir, optional bool) Status {
	status := Status{Name: name, Description: description, Optional: optional}
	if dir == "" {
		status.Detail = "hashcat path not configured"
		return status
	}
	path := filepath.Join(dir, name)
	status.Command = path
	info, err := os.Stat(path)
	switch {
	case err != nil:
		status.Detail = fmt.Sprintf("%s not found", path)
	case wantDir && !info.IsDir():
		status.Detail = fmt.Sprintf("%s is not a directory", path)
	case !wantDir && info.IsDir():
		status.Detail = fmt.Sprintf("%s is a directory", path)
	default:
		status.Available = true
	}
	return status
}
