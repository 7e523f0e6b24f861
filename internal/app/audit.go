package app

import (
	"context"
	"errors"
	"time"

	"swampcaptcha/internal/relay"
	"swampcaptcha/internal/state"
	"swampcaptcha/internal/ui"
)

// auditedSender logs and records every relay call made by the terminal
// surfaces. The service records its own calls in server.
type auditedSender struct {
	next   ui.Sender
	app    *App
	remote bool
}

func (s *auditedSender) Send(ctx context.Context, message string, history []relay.Turn) (relay.Reply, error) {
	started := s.app.now()
	reply, err := s.next.Send(ctx, message, history)
	elapsed := s.app.now().Sub(started)

	call := state.RelayCall{
		SessionID:    s.app.sessionID,
		Outcome:      outcomeFor(err),
		Approved:     err == nil && reply.Approved,
		Duration:     elapsed,
		MessageChars: len(message),
		TS:           started,
	}
	fields := map[string]any{
		"outcome":     call.Outcome,
		"remote":      s.remote,
		"turns":       len(history),
		"duration_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		s.app.logger.Error("relay.call_failed", fields)
	} else {
		fields["approved"] = reply.Approved
		s.app.logger.Info("relay.call", fields)
	}

	if s.app.store != nil {
		recCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if rerr := s.app.store.RecordRelayCall(recCtx, call); rerr != nil {
			s.app.logger.Error("ledger.record_failed", map[string]any{"error": rerr.Error()})
		}
	}
	return reply, err
}

func outcomeFor(err error) string {
	if err == nil {
		return state.OutcomeOK
	}
	var rerr *relay.Error
	if !errors.As(err, &rerr) {
		return state.OutcomeExit
	}
	switch rerr.Kind {
	case relay.KindLaunch:
		return state.OutcomeLaunch
	case relay.KindParse:
		return state.OutcomeParse
	case relay.KindRemote:
		return state.OutcomeRemote
	case relay.KindTransport:
		return state.OutcomeTransport
	default:
		return state.OutcomeExit
	}
}
