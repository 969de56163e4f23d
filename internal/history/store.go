package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"lovelyhashcat/internal/cracker"
	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/services"
)

var _ cracker.Recorder = (*Store)(nil)

// BeginSession records a launched session. It upserts so that results
// arriving before the launch row are kept.
func (s *Store) BeginSession(ctx context.Context, info cracker.SessionInfo) error {
	if strings.TrimSpace(info.ID) == "" {
		return errors.New("session id required")
	}
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT INTO sessions (
            id, attack_mode, hash_mode, hash_file, potfile_path, session_name,
            command, state, started_at, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            attack_mode  = excluded.attack_mode,
            hash_mode    = excluded.hash_mode,
            hash_file    = excluded.hash_file,
            potfile_path = excluded.potfile_path,
            session_name = excluded.session_name,
            command      = excluded.command,
            started_at   = excluded.started_at,
            updated_at   = excluded.updated_at`,
		info.ID,
		int(info.AttackMode),
		nullableInt(info.HashMode),
		nullableString(info.HashFile),
		nullableString(info.PotfilePath),
		nullableString(info.SessionName),
		nullableString(info.Command),
		"running",
		nullableTime(info.StartedAt),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ensureSession creates a placeholder row for id when none exists.
func (s *Store) ensureSession(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	_, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO sessions (id, state, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, "running", now, now,
	)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

// UpdateState records the latest lifecycle state of a session.
func (s *Store) UpdateState(ctx context.Context, id, state string) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE sessions SET state = ?, updated_at = ? WHERE id = ?`,
		state, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update session state: %w", err)
	}
	return nil
}

// FinishSession stores the exit outcome of a session.
func (s *Store) FinishSession(ctx context.Context, id string, exit events.Exit) error {
	if err := s.ensureSession(ctx, id); err != nil {
		return err
	}
	_, err := s.execWithRetry(ctx,
		`UPDATE sessions SET
            state = ?, exit_code = ?, exit_status = ?,
            started_at = COALESCE(started_at, ?), finished_at = ?, updated_at = ?
        WHERE id = ?`,
		"exited",
		exit.Code,
		nullableString(exit.Status),
		nullableTime(exit.StartedAt),
		nullableTime(exit.StoppedAt),
		formatTime(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// RecordError keeps the most recent error reported for a session.
func (s *Store) RecordError(ctx context.Context, id, message string) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE sessions SET error_message = ?, updated_at = ? WHERE id = ?`,
		nullableString(message), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("record session error: %w", err)
	}
	return nil
}

// AddResult stores a credential for a session. It reports false when the
// session already holds a result for hash.
func (s *Store) AddResult(ctx context.Context, sessionID, hash, password, source string, foundAt time.Time) (bool, error) {
	if strings.TrimSpace(sessionID) == "" || hash == "" {
		return false, errors.New("session id and hash required")
	}
	if err := s.ensureSession(ctx, sessionID); err != nil {
		return false, err
	}
	if foundAt.IsZero() {
		foundAt = time.Now()
	}
	res, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO results (session_id, hash, password, source, found_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, hash, password, source, formatTime(foundAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// GetSession returns the session with id.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "history", "get session", id, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// FindSession resolves a full id or unique id prefix.
func (s *Store) FindSession(ctx context.Context, prefix string) (*Session, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, services.Wrap(services.ErrValidation, "history", "find session", "session id required", nil)
	}
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.id LIKE ? ESCAPE '\' ORDER BY s.created_at DESC LIMIT 2`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	defer rows.Close()

	var matches []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		matches = append(matches, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "history", "find session", prefix, nil)
	case 1:
		return matches[0], nil
	default:
		return nil, services.Wrap(services.ErrValidation, "history", "find session",
			fmt.Sprintf("session prefix %q is ambiguous", prefix), nil)
	}
}

// ListSessions returns the most recent sessions first. A non-positive limit
// returns every session.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*Session, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + sessionColumns + ` FROM sessions s ORDER BY s.created_at DESC, s.rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// Results returns the credentials recorded for sessionID in discovery order.
// An empty sessionID returns results across all sessions.
func (s *Store) Results(ctx context.Context, sessionID string) ([]*Result, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + resultColumns + ` FROM results`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []*Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}

// Clear removes every session. Results go with them through the
// ON DELETE CASCADE foreign key.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("clear sessions: %w", err)
	}
	return res.RowsAffected()
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
