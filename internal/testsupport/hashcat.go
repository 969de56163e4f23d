package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// ArgvFileName is written beside a stub executable with one argument per line.
const ArgvFileName = "argv.txt"

// Stub describes the behavior of a generated hashcat stand-in.
type Stub struct {
	// Stdout lines are printed before anything else.
	Stdout []string
	// Stderr lines are printed to standard error.
	Stderr []string
	// Potfile lines are appended to the --potfile-path argument.
	Potfile []string
	// Sleep delays exit, in seconds (fractions allowed).
	Sleep float64
	// After lines are printed once the sleep completes.
	After []string
	// Linger delays exit after the After lines, in seconds.
	Linger float64
	// IgnoreTerm makes the stub survive SIGTERM.
	IgnoreTerm bool
	// ExitCode is the process exit status.
	ExitCode int
	// ExistingArgs lists 1-based argument positions that must name files
	// readable from the stub's working directory; otherwise it exits 255.
	ExistingArgs []int
}

// WriteStubHashcat writes an executable shell script to dir/hashcat and
// returns its path. Tests using it are skipped on Windows.
func WriteStubHashcat(t testing.TB, dir string, stub Stub) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub hashcat requires a POSIX shell")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	if stub.IgnoreTerm {
		b.WriteString("trap '' TERM\n")
	}
	b.WriteString(`printf '%s\n' "$@" > "$(dirname "$0")/` + ArgvFileName + "\"\n")
	for _, pos := range stub.ExistingArgs {
		arg := "${" + strconv.Itoa(pos) + "}"
		b.WriteString("[ -f \"" + arg + "\" ] || { printf '%s: No such file\\n' \"" + arg + "\" >&2; exit 255; }\n")
	}
	b.WriteString("pot=\"\"\nprev=\"\"\n")
	b.WriteString("for a in \"$@\"; do\n  if [ \"$prev\" = \"--potfile-path\" ]; then pot=\"$a\"; fi\n  prev=\"$a\"\ndone\n")
	for _, line := range stub.Stdout {
		b.WriteString("printf '%s\\n' " + shQuote(line) + "\n")
	}
	for _, line := range stub.Stderr {
		b.WriteString("printf '%s\\n' " + shQuote(line) + " >&2\n")
	}
	for _, line := range stub.Potfile {
		b.WriteString("[ -n \"$pot\" ] && printf '%s\\n' " + shQuote(line) + " >> \"$pot\"\n")
	}
	if stub.Sleep > 0 {
		b.WriteString("sleep " + strconv.FormatFloat(stub.Sleep, 'f', -1, 64) + "\n")
	}
	for _, line := range stub.After {
		b.WriteString("printf '%s\\n' " + shQuote(line) + "\n")
	}
	if stub.Linger > 0 {
		b.WriteString("sleep " + strconv.FormatFloat(stub.Linger, 'f', -1, 64) + "\n")
	}
	b.WriteString("exit " + strconv.Itoa(stub.ExitCode) + "\n")

	path := filepath.Join(dir, "hashcat")
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatalf("write stub hashcat: %v", err)
	}
	return path
}

// ReadStubArgs returns the arguments the stub at binary was last invoked with.
func ReadStubArgs(t testing.TB, binary string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(binary), ArgvFileName))
	if err != nil {
		t.Fatalf("read stub argv: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ArgAfter returns the argument following flag, or "" when absent.
func ArgAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
