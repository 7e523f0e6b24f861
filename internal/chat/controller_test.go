package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"swampcaptcha/internal/clock"
	"swampcaptcha/internal/relay"
)

type fakeSender struct {
	replies []relay.Reply
	errs    []error
	calls   int
	lastMsg string
	lastHis []relay.Turn
}

func (f *fakeSender) Send(_ context.Context, message string, history []relay.Turn) (relay.Reply, error) {
	i := f.calls
	f.calls++
	f.lastMsg = message
	f.lastHis = history
	var reply relay.Reply
	var err error
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return reply, err
}

func TestControllerOpensWithCounterpartLine(t *testing.T) {
	c := New(DefaultConfig(), &fakeSender{}, clock.NewManual(), Hooks{})
	msgs := c.Messages()
	if len(msgs) != 1 || msgs[0].Speaker != SpeakerCounterpart {
		t.Fatalf("expected opening counterpart line, got %+v", msgs)
	}
}

func TestSubmitSendsPriorTranscriptAndAppendsReply(t *testing.T) {
	fs := &fakeSender{replies: []relay.Reply{{Success: true, Response: "Layers. Onions have layers."}}}
	c := New(DefaultConfig(), fs, clock.NewManual(), Hooks{})

	if err := c.Submit(context.Background(), "  let me in  "); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if fs.lastMsg != "let me in" {
		t.Fatalf("expected trimmed message, got %q", fs.lastMsg)
	}
	if len(fs.lastHis) != 1 || fs.lastHis[0].Role != relay.RoleAssistant {
		t.Fatalf("expected history to hold only the opening line, got %+v", fs.lastHis)
	}
	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[1].Speaker != SpeakerUser || msgs[2].Text != "Layers. Onions have layers." {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}
	if c.Busy() || c.Complete() {
		t.Fatalf("expected controller idle and open")
	}
}

func TestSubmitRejectsEmptyText(t *testing.T) {
	fs := &fakeSender{}
	c := New(DefaultConfig(), fs, clock.NewManual(), Hooks{})
	if err := c.Submit(context.Background(), "   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if fs.calls != 0 {
		t.Fatalf("expected no relay call")
	}
}

func TestBeginRejectsWhileBusy(t *testing.T) {
	c := New(DefaultConfig(), &fakeSender{}, clock.NewManual(), Hooks{})
	if _, err := c.Begin("one"); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if !c.Busy() {
		t.Fatalf("expected busy while awaiting reply")
	}
	if _, err := c.Begin("two"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestFailuresAppendFallbackAndStayOpen(t *testing.T) {
	cfg := DefaultConfig()
	var seen []error
	fs := &fakeSender{
		replies: []relay.Reply{{}, {Success: false, Error: "no key"}},
		errs:    []error{&relay.Error{Kind: relay.KindExit, Diagnostic: "boom"}, nil},
	}
	c := New(cfg, fs, clock.NewManual(), Hooks{OnRelayError: func(err error) { seen = append(seen, err) }})

	for i := 0; i < 2; i++ {
		if err := c.Submit(context.Background(), "hello"); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}
	msgs := c.Messages()
	if msgs[2].Text != cfg.Broken {
		t.Fatalf("expected relay failure fallback, got %q", msgs[2].Text)
	}
	if msgs[4].Text != cfg.Declined {
		t.Fatalf("expected declined fallback, got %q", msgs[4].Text)
	}
	if len(seen) != 1 {
		t.Fatalf("expected one raw relay error reported, got %d", len(seen))
	}
	if c.Complete() || c.Busy() {
		t.Fatalf("expected controller to stay open after failures")
	}
}

func TestApprovalCompletesAndSucceedsAfterDelay(t *testing.T) {
	cfg := DefaultConfig()
	sched := clock.NewManual()
	successes := 0
	fs := &fakeSender{replies: []relay.Reply{{Success: true, Response: "Fine. Welcome.", Approved: true}}}
	c := New(cfg, fs, sched, Hooks{OnSuccess: func() { successes++ }})

	if err := c.Submit(context.Background(), "I brought waffles"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !c.Complete() {
		t.Fatalf("expected complete after approval")
	}
	if err := c.Submit(context.Background(), "again"); !errors.Is(err, ErrComplete) {
		t.Fatalf("expected ErrComplete, got %v", err)
	}

	sched.Advance(cfg.SuccessDelay - time.Millisecond)
	if successes != 0 {
		t.Fatalf("expected success to wait for the display delay")
	}
	sched.Advance(time.Millisecond)
	if successes != 1 {
		t.Fatalf("expected one success, got %d", successes)
	}
}

func TestCloseCancelsPendingSuccess(t *testing.T) {
	sched := clock.NewManual()
	successes := 0
	fs := &fakeSender{replies: []relay.Reply{{Success: true, Approved: true}}}
	c := New(DefaultConfig(), fs, sched, Hooks{OnSuccess: func() { successes++ }})
	_ = c.Submit(context.Background(), "hi")
	c.Close()
	sched.Advance(time.Minute)
	if successes != 0 {
		t.Fatalf("expected no success after close")
	}
}
