package events

import (
	"time"

	"lovelyhashcat/internal/services/hashcat"
)

// Kind identifies the type of a session event.
type Kind string

const (
	KindOutput          Kind = "output"
	KindErrorOutput     Kind = "error_output"
	KindStatus          Kind = "status"
	KindStatusComplete  Kind = "status_complete"
	KindPasswordFound   Kind = "password_found"
	KindProcessFinished Kind = "process_finished"
	KindState           Kind = "state"
	KindNotice          Kind = "notice"
	KindError           Kind = "error"
)

// Source records which path reported a credential.
type Source string

const (
	SourceStream  Source = "stream"
	SourcePotfile Source = "potfile"
	SourceShow    Source = "show"
)

// Event is one observable occurrence in a cracking session.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Kind      Kind      `json:"kind"`
	SessionID string    `json:"session_id,omitempty"`

	// Line is set for output, error_output and notice events.
	Line string `json:"line,omitempty"`

	Status *hashcat.StatusSnapshot `json:"status,omitempty"`
	// RSS is the child's resident memory in bytes when a status event was
	// published, 0 when it could not be sampled.
	RSS uint64 `json:"rss_bytes,omitempty"`

	Hash     string `json:"hash,omitempty"`
	Password string `json:"password,omitempty"`
	Source   Source `json:"source,omitempty"`

	Exit *Exit `json:"exit,omitempty"`

	// State carries the new session state for state events.
	State string `json:"state,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Exit summarizes a finished process.
type Exit struct {
	Code      int       `json:"code"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at"`
}

// Elapsed returns the process runtime.
func (e Exit) Elapsed() time.Duration {
	if e.StartedAt.IsZero() || e.StoppedAt.IsZero() {
		return 0
	}
	return e.StoppedAt.Sub(e.StartedAt)
}
