package history

import (
	"database/sql"
	"errors"
	"time"
)

const sessionColumns = "s.id, s.attack_mode, s.hash_mode, s.hash_file, s.potfile_path, s.session_name, s.command, s.state, s.exit_code, s.exit_status, s.error_message, s.started_at, s.finished_at, s.created_at, s.updated_at, (SELECT COUNT(1) FROM results r WHERE r.session_id = s.id)"

const resultColumns = "id, session_id, hash, password, source, found_at"

// timeLayout keeps a fixed fractional width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		id           string
		attackMode   int
		hashMode     sql.NullInt64
		hashFile     sql.NullString
		potfilePath  sql.NullString
		sessionName  sql.NullString
		command      sql.NullString
		state        string
		exitCode     sql.NullInt64
		exitStatus   sql.NullString
		errorMessage sql.NullString
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		resultCount  int
	)
	if err := scanner.Scan(
		&id,
		&attackMode,
		&hashMode,
		&hashFile,
		&potfilePath,
		&sessionName,
		&command,
		&state,
		&exitCode,
		&exitStatus,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
		&createdRaw,
		&updatedRaw,
		&resultCount,
	); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:           id,
		AttackMode:   attackMode,
		HashFile:     hashFile.String,
		PotfilePath:  potfilePath.String,
		SessionName:  sessionName.String,
		Command:      command.String,
		State:        state,
		ExitStatus:   exitStatus.String,
		ErrorMessage: errorMessage.String,
		ResultCount:  resultCount,
	}
	if hashMode.Valid {
		v := int(hashMode.Int64)
		sess.HashMode = &v
	}
	if exitCode.Valid {
		v := int(exitCode.Int64)
		sess.ExitCode = &v
	}
	sess.StartedAt = parseOptionalTime(startedRaw)
	sess.FinishedAt = parseOptionalTime(finishedRaw)
	if created, err := parseTimeString(createdRaw.String); err == nil {
		sess.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		sess.UpdatedAt = updated
	}
	return sess, nil
}

func scanResult(scanner interface{ Scan(dest ...any) error }) (*Result, error) {
	var (
		res      Result
		foundRaw string
	)
	if err := scanner.Scan(&res.ID, &res.SessionID, &res.Hash, &res.Password, &res.Source, &foundRaw); err != nil {
		return nil, err
	}
	if found, err := parseTimeString(foundRaw); err == nil {
		res.FoundAt = found
	}
	return &res, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return formatTime(value)
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseOptionalTime(raw sql.NullString) *time.Time {
	if !raw.Valid {
		return nil
	}
	t, err := parseTimeString(raw.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
