package history

import "time"

// Session is one recorded cracking session.
type Session struct {
	ID           string     `json:"id"`
	AttackMode   int        `json:"attack_mode"`
	HashMode     *int       `json:"hash_mode,omitempty"`
	HashFile     string     `json:"hash_file,omitempty"`
	PotfilePath  string     `json:"potfile_path,omitempty"`
	SessionName  string     `json:"session_name,omitempty"`
	Command      string     `json:"command,omitempty"`
	State        string     `json:"state"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	ExitStatus   string     `json:"exit_status,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ResultCount  int        `json:"result_count"`
}

// Elapsed returns the recorded runtime, zero while unfinished.
func (s Session) Elapsed() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// Result is one credential reported during a session.
type Result struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Hash      string    `json:"hash"`
	Password  string    `json:"password"`
	Source    string    `json:"source"`
	FoundAt   time.Time `json:"found_at"`
}
