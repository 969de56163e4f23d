package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lovelyhashcat/internal/services/hashcat"
)

var titleCaser = cases.Title(language.Und)

// titleLabel turns identifiers such as "hybrid-wordlist-mask" into
// "Hybrid Wordlist Mask".
func titleLabel(value string) string {
	value = strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	return titleCaser.String(value)
}

func attackModeLabel(mode int) string {
	return titleLabel(hashcat.AttackMode(mode).String())
}

// hashcatExitLabel describes hashcat's documented exit codes.
func hashcatExitLabel(code int) string {
	switch code {
	case 0:
		return "cracked"
	case 1:
		return "exhausted"
	case 2:
		return "aborted"
	case 3:
		return "aborted by checkpoint"
	case 4:
		return "aborted by runtime limit"
	case 5:
		return "aborted by finish"
	case 255, -1:
		return "error"
	case 254, -2:
		return "gpu watchdog alarm"
	default:
		return fmt.Sprintf("exit %d", code)
	}
}

// hashcatExitFailed reports whether code means hashcat itself failed rather
// than finishing or being stopped.
func hashcatExitFailed(code int) bool {
	return code < 0 || code >= 6
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
