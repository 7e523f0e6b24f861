package state

import (
	"context"
	"time"
)

// Store is an append-only audit ledger. Nothing in it is ever read back to
// restore a visitor's progress.
type Store interface {
	EnsureSchema(ctx context.Context) error
	StartSession(ctx context.Context, sess Session) error
	RecordRelayCall(ctx context.Context, call RelayCall) error
	RecordChallengeEvent(ctx context.Context, ev ChallengeEvent) error
	GetSummary(ctx context.Context) (Summary, error)
	GetLastSession(ctx context.Context) (*LastSession, error)
	Close() error
}

type Session struct {
	SessionID string
	Surface   string
	StartTS   time.Time
}

type RelayCall struct {
	SessionID    string
	Outcome      string
	Approved     bool
	Duration     time.Duration
	MessageChars int
	TS           time.Time
}

type ChallengeEvent struct {
	SessionID string
	Stage     string
	Event     string
	Completed int
	Failures  int
	TS        time.Time
}

type Summary struct {
	Sessions       int
	RelayCalls     int
	RelayFailures  int
	Approvals      int
	ArcadeFailures int
	Completions    int
}

type LastSession struct {
	SessionID  string
	Surface    string
	StartTS    time.Time
	Events     int
	RelayCalls int
}

// Relay call outcomes. Transport is a client that never reached a relay service.
const (
	OutcomeOK        = "ok"
	OutcomeLaunch    = "launch"
	OutcomeExit      = "exit"
	OutcomeParse     = "parse"
	OutcomeRemote    = "remote"
	OutcomeTransport = "transport"
)

const (
	EventSucceeded = "succeeded"
	EventFailed    = "failed"
	EventReset     = "reset"
)
