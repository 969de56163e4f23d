package potfile

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"lovelyhashcat/internal/services"
)

const maxLineSize = 1024 * 1024

// Entry is one cracked credential.
type Entry struct {
	Hash     string `json:"hash"`
	Password string `json:"password"`
}

func (e Entry) String() string {
	return e.Hash + ":" + e.Password
}

// Plain returns the password with hashcat's $HEX[...] encoding removed. The
// raw value is returned when it is not hex encoded or fails to decode.
func (e Entry) Plain() string {
	p := e.Password
	if !strings.HasPrefix(p, "$HEX[") || !strings.HasSuffix(p, "]") {
		return p
	}
	decoded, err := hex.DecodeString(p[len("$HEX[") : len(p)-1])
	if err != nil {
		return p
	}
	return string(decoded)
}

// ParseLine splits a potfile line on its first colon. Blank lines, comments,
// lines without a colon, and lines with an empty hash are rejected. The
// password is kept verbatim apart from a trailing line terminator.
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Entry{}, false
	}
	hash, password, ok := strings.Cut(line, ":")
	if !ok {
		return Entry{}, false
	}
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return Entry{}, false
	}
	return Entry{Hash: hash, Password: password}, true
}

// HashKey extracts the target key from a hash-file line: the text before the
// first colon, or the whole trimmed line.
func HashKey(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false
	}
	if key, _, ok := strings.Cut(line, ":"); ok {
		line = strings.TrimSpace(key)
	}
	return line, line != ""
}

// ReadHashKeys returns the distinct target keys of a hash file in file order.
func ReadHashKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "potfile", "read hash file", path, err)
	}
	defer f.Close()

	keys, err := scanHashKeys(f)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "potfile", "read hash file", path, err)
	}
	return keys, nil
}

func scanHashKeys(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	scanner := newScanner(r)
	for scanner.Scan() {
		key, ok := HashKey(scanner.Text())
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys, scanner.Err()
}

// ReadEntries parses every well-formed line of a potfile in file order.
// The raw open error is returned so callers can distinguish a missing file.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ScanEntries(f)
}

// ScanEntries parses potfile lines from r.
func ScanEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := newScanner(r)
	for scanner.Scan() {
		if entry, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("scan potfile: %w", err)
	}
	return entries, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return scanner
}
