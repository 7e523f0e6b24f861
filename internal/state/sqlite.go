package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Concurrent handlers append to the same file.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			surface TEXT NOT NULL DEFAULT 'http',
			start_ts TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS relay_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL DEFAULT '',
			call_ts TEXT NOT NULL,
			outcome TEXT NOT NULL,
			approved INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			message_chars INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			event_ts TEXT NOT NULL,
			stage TEXT NOT NULL,
			event TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			failures INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_relay_calls_session ON relay_calls(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_challenge_events_session ON challenge_events(session_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) StartSession(ctx context.Context, sess Session) error {
	id := strings.TrimSpace(sess.SessionID)
	if id == "" {
		return fmt.Errorf("session id is required")
	}
	surface := strings.TrimSpace(sess.Surface)
	if surface == "" {
		surface = "http"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions(session_id, surface, start_ts) VALUES(?,?,?)`,
		id, surface, stamp(sess.StartTS),
	)
	return err
}

func (s *SQLiteStore) RecordRelayCall(ctx context.Context, call RelayCall) error {
	outcome := strings.TrimSpace(call.Outcome)
	if outcome == "" {
		outcome = OutcomeOK
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relay_calls(session_id, call_ts, outcome, approved, duration_ms, message_chars)
		VALUES(?, ?, ?, ?, ?, ?)
	`,
		strings.TrimSpace(call.SessionID),
		stamp(call.TS),
		outcome,
		ifThen(call.Approved, 1, 0),
		max(0, call.Duration.Milliseconds()),
		max(0, call.MessageChars),
	)
	return err
}

func (s *SQLiteStore) RecordChallengeEvent(ctx context.Context, ev ChallengeEvent) error {
	if strings.TrimSpace(ev.SessionID) == "" || strings.TrimSpace(ev.Event) == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO challenge_events(session_id, event_ts, stage, event, completed, failures)
		VALUES(?, ?, ?, ?, ?, ?)
	`, ev.SessionID, stamp(ev.TS), ev.Stage, ev.Event, ev.Completed, ev.Failures)
	return err
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sessions) as sessions,
			(SELECT COUNT(*) FROM relay_calls) as relay_calls,
			(SELECT COUNT(*) FROM relay_calls WHERE outcome <> 'ok') as relay_failures,
			(SELECT COALESCE(SUM(approved),0) FROM relay_calls) as approvals,
			(SELECT COUNT(*) FROM challenge_events WHERE stage = 'arcade' AND event = 'failed') as arcade_failures,
			(SELECT COUNT(*) FROM challenge_events WHERE event = 'succeeded' AND completed >= 2) as completions
	`)
	if err := row.Scan(&out.Sessions, &out.RelayCalls, &out.RelayFailures, &out.Approvals, &out.ArcadeFailures, &out.Completions); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SQLiteStore) GetLastSession(ctx context.Context) (*LastSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			s.session_id,
			s.surface,
			s.start_ts,
			(SELECT COUNT(*) FROM challenge_events e WHERE e.session_id = s.session_id),
			(SELECT COUNT(*) FROM relay_calls r WHERE r.session_id = s.session_id)
		FROM sessions s
		ORDER BY s.start_ts DESC, s.rowid DESC
		LIMIT 1
	`)
	var (
		out        LastSession
		startTSRaw string
	)
	if err := row.Scan(&out.SessionID, &out.Surface, &startTSRaw, &out.Events, &out.RelayCalls); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if t, err := time.Parse(timeLayout, startTSRaw); err == nil {
		out.StartTS = t
	}
	return &out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func stamp(ts time.Time) string {
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.UTC().Format(timeLayout)
}

func ifThen(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
