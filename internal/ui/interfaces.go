package ui

import (
	"context"

	"swampcaptcha/internal/arcade"
	"swampcaptcha/internal/challenges"
	"swampcaptcha/internal/clock"
	flow "swampcaptcha/internal/progress"
	"swampcaptcha/internal/relay"
	"swampcaptcha/internal/telemetry"
)

// Sender is the relay the conversation stage talks to.
type Sender interface {
	Send(ctx context.Context, message string, history []relay.Turn) (relay.Reply, error)
}

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutMedium
	LayoutTooSmall
)

type EventKind string

const (
	EventSucceeded EventKind = "succeeded"
	EventFailed    EventKind = "failed"
	EventReset     EventKind = "reset"
)

// Event is emitted after every recorded challenge outcome.
type Event struct {
	Kind     EventKind
	Stage    flow.Stage
	Progress flow.Progress
}

type Options struct {
	Challenges   challenges.File
	Sender       Sender
	Logger       telemetry.Logger
	StyleVariant string
	MotionLevel  string
	ASCIIOnly    bool
	OnEvent      func(Event)

	// Scheduler and Rand default to real timers and math/rand.
	Scheduler clock.Scheduler
	Rand      arcade.Rand
}
