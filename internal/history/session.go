package history

import (
	"database/sql"
	"fmt"
	"time"
)

// Session outcomes.
const (
	OutcomeRunning  = "running"
	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
	OutcomeStopped  = "stopped"
)

// Session is one resolution run recorded in the journal.
type Session struct {
	ID            string
	Branch        string
	Model         string
	StartedAt     time.Time
	FinishedAt    *time.Time
	Outcome       string
	FilesResolved int
	InputTokens   int64
	OutputTokens  int64
}

// ToolCall is one tool invocation recorded against a session.
type ToolCall struct {
	ID         int64
	SessionID  string
	Tool       string
	Path       string
	Success    bool
	Diagnostic string
	CalledAt   time.Time
}

// CreateSession inserts a new running session.
func (db *DB) CreateSession(id, branch, model string) error {
	_, err := db.Exec(`
		INSERT INTO sessions (id, branch, model, started_at, outcome)
		VALUES (?, ?, ?, ?, ?)
	`, id, branch, model, formatTime(time.Now()), OutcomeRunning)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FinishSession records the outcome and final counters for a session.
func (db *DB) FinishSession(id, outcome string, filesResolved int, inputTokens, outputTokens int64) error {
	_, err := db.Exec(`
		UPDATE sessions
		SET outcome = ?, files_resolved = ?, input_tokens = ?, output_tokens = ?, finished_at = ?
		WHERE id = ?
	`, outcome, filesResolved, inputTokens, outputTokens, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// RecordToolCall appends a tool invocation to the journal.
func (db *DB) RecordToolCall(sessionID, tool, path string, success bool, diagnostic string) error {
	_, err := db.Exec(`
		INSERT INTO tool_calls (session_id, tool, path, success, diagnostic, called_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sessionID, tool, path, success, diagnostic, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record tool call: %w", err)
	}
	return nil
}

// GetSession returns a session by ID.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, branch, model, started_at, finished_at, outcome, files_resolved, input_tokens, output_tokens
		FROM sessions WHERE id = ?
	`, id)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListSessions returns the most recent sessions, newest first.
func (db *DB) ListSessions(limit int) ([]*Session, error) {
	rows, err := db.Query(`
		SELECT id, branch, model, started_at, finished_at, outcome, files_resolved, input_tokens, output_tokens
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListToolCalls returns all tool calls for a session in call order.
func (db *DB) ListToolCalls(sessionID string) ([]*ToolCall, error) {
	rows, err := db.Query(`
		SELECT id, session_id, tool, path, success, diagnostic, called_at
		FROM tool_calls WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list tool calls: %w", err)
	}
	defer rows.Close()

	var calls []*ToolCall
	for rows.Next() {
		var tc ToolCall
		var path, diagnostic sql.NullString
		var success int
		var calledAt string
		if err := rows.Scan(&tc.ID, &tc.SessionID, &tc.Tool, &path, &success, &diagnostic, &calledAt); err != nil {
			return nil, fmt.Errorf("scan tool call: %w", err)
		}
		tc.Path = path.String
		tc.Diagnostic = diagnostic.String
		tc.Success = success != 0
		if t, err := parseTime(calledAt); err == nil {
			tc.CalledAt = t
		}
		calls = append(calls, &tc)
	}
	return calls, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanSession.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var s Session
	var startedAt string
	var finishedAt sql.NullString
	if err := row.Scan(&s.ID, &s.Branch, &s.Model, &startedAt, &finishedAt, &s.Outcome,
		&s.FilesResolved, &s.InputTokens, &s.OutputTokens); err != nil {
		return nil, err
	}
	if t, err := parseTime(startedAt); err == nil {
		s.StartedAt = t
	}
	s.FinishedAt = parseNullableTime(finishedAt)
	return &s, nil
}
