package potfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Outcome is the result of one reconciliation pass.
type Outcome struct {
	// Found holds newly reported pairs in potfile order.
	Found []Entry
	// TargetCount is the number of distinct keys read from the hash file.
	TargetCount int
	// PotfileAvailable is false when the potfile was missing or unreadable.
	PotfileAvailable bool
	// Notice is an informational message for soft failures.
	Notice string
}

// Matcher decides whether a potfile hash belongs to the target set.
type Matcher struct {
	exact   map[string]struct{}
	targets []string
}

// NewMatcher indexes target keys.
func NewMatcher(targets []string) *Matcher {
	m := &Matcher{exact: make(map[string]struct{}, len(targets)), targets: targets}
	for _, t := range targets {
		m.exact[t] = struct{}{}
	}
	return m
}

// Relevant reports whether hash equals a target or either contains the other.
func (m *Matcher) Relevant(hash string) bool {
	if _, ok := m.exact[hash]; ok {
		return true
	}
	for _, t := range m.targets {
		if strings.Contains(t, hash) || strings.Contains(hash, t) {
			return true
		}
	}
	return false
}

// Reconcile reads the targets from hashFile and returns potfile entries that
// match them and are not yet in processed, adding each to processed. An
// unreadable hash file is an error; a missing or unreadable potfile yields an
// empty outcome with a notice.
func Reconcile(hashFile, potfilePath string, processed *ProcessedSet) (Outcome, error) {
	targets, err := ReadHashKeys(hashFile)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{TargetCount: len(targets)}

	if strings.TrimSpace(potfilePath) == "" {
		out.Notice = "potfile path not configured"
		return out, nil
	}
	entries, err := ReadEntries(potfilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			out.Notice = fmt.Sprintf("potfile %s does not exist yet", potfilePath)
		} else {
			out.Notice = fmt.Sprintf("potfile %s unreadable: %v", potfilePath, err)
		}
		return out, nil
	}
	out.PotfileAvailable = true

	if len(targets) == 0 {
		return out, nil
	}
	matcher := NewMatcher(targets)
	for _, entry := range entries {
		if !matcher.Relevant(entry.Hash) {
			continue
		}
		if !processed.Add(entry.Hash) {
			continue
		}
		out.Found = append(out.Found, entry)
	}
	return out, nil
}

// LoadCracked returns potfile entries whose hash exactly equals a whole line
// of hashFile. Later potfile lines for the same hash replace earlier ones.
func LoadCracked(hashFile, potfilePath string) ([]Entry, error) {
	raw, err := readHashLines(hashFile)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	entries, err := ReadEntries(potfilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read potfile: %w", err)
	}

	wanted := make(map[string]struct{}, len(raw))
	for _, line := range raw {
		wanted[line] = struct{}{}
	}
	index := make(map[string]int)
	var results []Entry
	for _, entry := range entries {
		if _, ok := wanted[entry.Hash]; !ok {
			continue
		}
		if i, seen := index[entry.Hash]; seen {
			results[i] = entry
			continue
		}
		index[entry.Hash] = len(results)
		results = append(results, entry)
	}
	return results, nil
}

func readHashLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read hash file: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
