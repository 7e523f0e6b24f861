package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "audit.db"))
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	store := openStore(t)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second ensure schema: %v", err)
	}
}

func TestSummaryCountsRelayCallsAndChallengeEvents(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

	if err := store.StartSession(ctx, Session{SessionID: "s-1", Surface: "tui", StartTS: now}); err != nil {
		t.Fatalf("start session: %v", err)
	}
	// Starting the same session twice is ignored.
	if err := store.StartSession(ctx, Session{SessionID: "s-1", StartTS: now}); err != nil {
		t.Fatalf("start duplicate session: %v", err)
	}

	calls := []RelayCall{
		{SessionID: "s-1", Outcome: OutcomeExit, Duration: 40 * time.Millisecond, MessageChars: 5},
		{SessionID: "s-1", Outcome: OutcomeParse},
		{SessionID: "s-1", Outcome: OutcomeOK, Approved: true, Duration: time.Second},
	}
	for _, c := range calls {
		if err := store.RecordRelayCall(ctx, c); err != nil {
			t.Fatalf("record relay call: %v", err)
		}
	}

	events := []ChallengeEvent{
		{SessionID: "s-1", Stage: "arcade", Event: EventFailed, Failures: 1},
		{SessionID: "s-1", Stage: "arcade", Event: EventSucceeded, Completed: 1, Failures: 1},
		{SessionID: "s-1", Stage: "conversation", Event: EventSucceeded, Completed: 2},
	}
	for _, ev := range events {
		if err := store.RecordChallengeEvent(ctx, ev); err != nil {
			t.Fatalf("record event: %v", err)
		}
	}

	sum, err := store.GetSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := Summary{Sessions: 1, RelayCalls: 3, RelayFailures: 2, Approvals: 1, ArcadeFailures: 1, Completions: 1}
	if sum != want {
		t.Fatalf("expected %+v, got %+v", want, sum)
	}
}

func TestGetLastSession(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	last, err := store.GetLastSession(ctx)
	if err != nil {
		t.Fatalf("last session on empty db: %v", err)
	}
	if last != nil {
		t.Fatalf("expected no session, got %+v", last)
	}

	early := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	_ = store.StartSession(ctx, Session{SessionID: "old", StartTS: early})
	_ = store.StartSession(ctx, Session{SessionID: "new", Surface: "tui", StartTS: late})
	_ = store.RecordChallengeEvent(ctx, ChallengeEvent{SessionID: "new", Stage: "arcade", Event: EventFailed})

	last, err = store.GetLastSession(ctx)
	if err != nil {
		t.Fatalf("last session: %v", err)
	}
	if last == nil || last.SessionID != "new" || last.Surface != "tui" || last.Events != 1 {
		t.Fatalf("unexpected last session: %+v", last)
	}
	if !last.StartTS.Equal(late) {
		t.Fatalf("expected start %v, got %v", late, last.StartTS)
	}
}

func TestStartSessionRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.StartSession(context.Background(), Session{}); err == nil {
		t.Fatalf("expected missing session id to fail")
	}
}
