package hashcat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Counter is an n/total pair reported by hashcat's status screen.
type Counter struct {
	Done  int64 `json:"done"`
	Total int64 `json:"total"`
}

// Percent returns Done as a percentage of Total, or 0 when Total is zero.
func (c Counter) Percent() float64 {
	if c.Total <= 0 {
		return 0
	}
	return float64(c.Done) / float64(c.Total) * 100
}

func (c Counter) String() string {
	return fmt.Sprintf("%d/%d (%.2f%%)", c.Done, c.Total, c.Percent())
}

// StatusSnapshot is a partial status update extracted from one chunk. Fields
// that were not present in the chunk are left empty or nil.
type StatusSnapshot struct {
	Status          string   `json:"status,omitempty"`
	Speed           string   `json:"speed,omitempty"`
	Recovered       *Counter `json:"recovered,omitempty"`
	Progress        *Counter `json:"progress,omitempty"`
	ProgressPercent *float64 `json:"progress_percent,omitempty"`
	HashTarget      string   `json:"hash_target,omitempty"`
	HashType        string   `json:"hash_type,omitempty"`
	TimeStarted     string   `json:"time_started,omitempty"`
}

// Empty reports whether no field was found.
func (s StatusSnapshot) Empty() bool {
	return s.Status == "" && s.Speed == "" && s.Recovered == nil && s.Progress == nil &&
		s.HashTarget == "" && s.HashType == "" && s.TimeStarted == ""
}

// Credential is a cracked (hash, password) pair.
type Credential struct {
	Hash     string `json:"hash"`
	Password string `json:"password"`
}

// ParseResult holds everything recognized in one chunk of output.
type ParseResult struct {
	// Snapshot is nil when the chunk carried no status fields.
	Snapshot *StatusSnapshot
	// Cracked lists credentials printed inline with a recognizable hash prefix.
	Cracked []Credential
	// AllInPotfile is set when hashcat reports every target is already cracked.
	AllInPotfile bool
	// SessionSummary is set when a session status block is present.
	SessionSummary bool
}

var (
	statusPattern     = regexp.MustCompile(`Status\.+: ([^\r\n]+)`)
	speedPattern      = regexp.MustCompile(`Speed\.#(?:1|\*)\.+: ([^\r\n]+)`)
	recoveredPattern  = regexp.MustCompile(`Recovered\.+: (\d+)/(\d+)`)
	progressPattern   = regexp.MustCompile(`Progress\.+: (\d+)/(\d+)`)
	hashTargetPattern = regexp.MustCompile(`Hash\.Target\.+: ([^\r\n]+)`)
	timeStartPattern  = regexp.MustCompile(`Time\.Started\.+: ([^\r\n]+)`)
	hashTypePattern   = regexp.MustCompile(`Hash\.(?:Type|Mode)\.+: ([^\r\n]+)`)

	summarySessionPattern = regexp.MustCompile(`(?m)^Session\.+: `)
	summaryStatusPattern  = regexp.MustCompile(`(?m)^Status\.+: `)

	// crackedLinePatterns match formats whose hash carries a self-identifying
	// prefix, so the password can be split off without knowing the hash mode.
	// The password is the rest of the line and may contain spaces.
	crackedLinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(\$pkzip2?\$[^:]+):\s?(.+)$`),
		regexp.MustCompile(`^(\$zip2\$[^:]+):\s?(.+)$`),
	}
)

// AllInPotfileMarker is printed when every target hash is already in the potfile.
const AllInPotfileMarker = "All hashes found as potfile"

// StatusLineMarkers identify status-screen lines that must never be mistaken
// for cracked credentials.
var StatusLineMarkers = []string{
	"Time.Started",
	"Status.....",
	"Recovered",
	"Progress",
}

// PasswordNoiseMarkers reject captured passwords that are really fragments of
// status output.
var PasswordNoiseMarkers = []string{
	"Started",
	"Status",
	"Recovery",
}

// IsStatusLine reports whether line looks like a status/progress field.
func IsStatusLine(line string) bool {
	for _, marker := range StatusLineMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// IsNoisePassword reports whether a captured password is a status fragment.
func IsNoisePassword(password string) bool {
	for _, marker := range PasswordNoiseMarkers {
		if strings.Contains(password, marker) {
			return true
		}
	}
	return false
}

// ParseChunk extracts status fields, inline credentials, and completion
// markers from one chunk. Pattern searches are independent of each other.
func ParseChunk(text string) ParseResult {
	var result ParseResult

	snapshot := parseSnapshot(text)
	if !snapshot.Empty() {
		result.Snapshot = &snapshot
	}

	result.AllInPotfile = strings.Contains(text, AllInPotfileMarker)
	result.SessionSummary = summarySessionPattern.MatchString(text) && summaryStatusPattern.MatchString(text)
	result.Cracked = parseCrackedLines(text)
	return result
}

func parseSnapshot(text string) StatusSnapshot {
	var s StatusSnapshot
	if m := statusPattern.FindStringSubmatch(text); m != nil {
		s.Status = strings.TrimSpace(m[1])
	}
	if m := speedPattern.FindStringSubmatch(text); m != nil {
		s.Speed = strings.TrimSpace(m[1])
	}
	if c, ok := matchCounter(recoveredPattern, text); ok {
		s.Recovered = &c
	}
	if c, ok := matchCounter(progressPattern, text); ok {
		s.Progress = &c
		pct := c.Percent()
		s.ProgressPercent = &pct
	}
	if m := hashTargetPattern.FindStringSubmatch(text); m != nil {
		s.HashTarget = strings.TrimSpace(m[1])
	}
	if m := timeStartPattern.FindStringSubmatch(text); m != nil {
		s.TimeStarted = strings.TrimSpace(m[1])
	}
	if m := hashTypePattern.FindStringSubmatch(text); m != nil {
		s.HashType = strings.TrimSpace(m[1])
	}
	return s
}

func matchCounter(re *regexp.Regexp, text string) (Counter, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return Counter{}, false
	}
	done, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Counter{}, false
	}
	total, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Counter{}, false
	}
	return Counter{Done: done, Total: total}, true
}

func parseCrackedLines(text string) []Credential {
	var found []Credential
	for _, line := range SplitLines(text) {
		if IsStatusLine(line) {
			continue
		}
		for _, re := range crackedLinePatterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if IsNoisePassword(m[2]) {
				break
			}
			found = append(found, Credential{Hash: m[1], Password: m[2]})
			break
		}
	}
	return found
}

// SplitLines splits text on any line terminator and drops empty lines.
func SplitLines(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
	lines := fields[:0]
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			lines = append(lines, f)
		}
	}
	return lines
}
