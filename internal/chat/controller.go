package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"swampcaptcha/internal/clock"
	"swampcaptcha/internal/relay"
)

var (
	ErrEmpty    = errors.New("message is empty")
	ErrBusy     = errors.New("a reply is already pending")
	ErrComplete = errors.New("conversation is already complete")
)

type Speaker string

const (
	SpeakerUser        Speaker = "user"
	SpeakerCounterpart Speaker = "counterpart"
)

// Message is one transcript entry. Entries are never edited once appended.
type Message struct {
	Speaker Speaker
	Text    string
	At      time.Time
}

// Sender is satisfied by relay.Relay and relay.Client.
type Sender interface {
	Send(ctx context.Context, message string, history []relay.Turn) (relay.Reply, error)
}

type Config struct {
	Opening string
	// Declined is shown when the relay answered but reported success=false.
	Declined string
	// Broken is shown when the relay call itself failed.
	Broken       string
	SuccessDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Opening:      "What are you doing in my swamp?! You better have a good reason or you're not getting in!",
		Declined:     "Sorry, I'm having trouble understanding. Try again!",
		Broken:       "Something went wrong with my swamp magic. Try again!",
		SuccessDelay: 2 * time.Second,
	}
}

type Hooks struct {
	OnChange  func()
	OnSuccess func()
	// OnRelayError sees the raw failure the transcript hides.
	OnRelayError func(error)
}

// Pending is a submission that has been accepted and is waiting on the relay.
type Pending struct {
	Message string
	History []relay.Turn
}

// Controller owns the transcript. Like arcade.Game it expects every call and
// scheduler callback on one goroutine; Begin and Resolve split Submit so the
// relay call itself can run elsewhere.
type Controller struct {
	cfg    Config
	sender Sender
	sched  clock.Scheduler
	hooks  Hooks
	now    func() time.Time

	messages  []Message
	busy      bool
	complete  bool
	succeeded bool
	closed    bool
	timer     clock.Cancel
}

func New(cfg Config, sender Sender, sched clock.Scheduler, hooks Hooks) *Controller {
	c := &Controller{cfg: cfg, sender: sender, sched: sched, hooks: hooks, now: time.Now}
	if cfg.Opening != "" {
		c.messages = append(c.messages, Message{Speaker: SpeakerCounterpart, Text: cfg.Opening, At: c.now()})
	}
	return c
}

func (c *Controller) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) Busy() bool     { return c.busy }
func (c *Controller) Complete() bool { return c.complete }

// Submit runs a whole exchange synchronously.
func (c *Controller) Submit(ctx context.Context, text string) error {
	p, err := c.Begin(text)
	if err != nil {
		return err
	}
	reply, sendErr := c.sender.Send(ctx, p.Message, p.History)
	c.Resolve(reply, sendErr)
	return nil
}

// Begin validates text, appends the user turn and marks the controller busy.
// History holds the transcript as it was before this turn.
func (c *Controller) Begin(text string) (Pending, error) {
	text = strings.TrimSpace(text)
	switch {
	case c.closed || c.complete:
		return Pending{}, ErrComplete
	case c.busy:
		return Pending{}, ErrBusy
	case text == "":
		return Pending{}, ErrEmpty
	}
	p := Pending{Message: text, History: Transcript(c.messages)}
	c.messages = append(c.messages, Message{Speaker: SpeakerUser, Text: text, At: c.now()})
	c.busy = true
	c.changed()
	return p, nil
}

// Resolve records the relay's answer to the pending submission.
func (c *Controller) Resolve(reply relay.Reply, err error) {
	if !c.busy || c.closed {
		return
	}
	c.busy = false

	switch {
	case err != nil:
		if c.hooks.OnRelayError != nil {
			c.hooks.OnRelayError(err)
		}
		c.say(c.cfg.Broken)
	case !reply.Success:
		c.say(c.cfg.Declined)
	default:
		c.say(reply.Response)
		if reply.Approved {
			c.complete = true
			c.timer = c.sched.After(c.cfg.SuccessDelay, c.succeed)
		}
	}
	c.changed()
}

// Close cancels a pending success notification.
func (c *Controller) Close() {
	c.closed = true
	if c.timer != nil {
		c.timer()
		c.timer = nil
	}
}

func (c *Controller) succeed() {
	if c.closed || c.succeeded {
		return
	}
	c.succeeded = true
	c.timer = nil
	if c.hooks.OnSuccess != nil {
		c.hooks.OnSuccess()
	}
}

func (c *Controller) say(text string) {
	c.messages = append(c.messages, Message{Speaker: SpeakerCounterpart, Text: text, At: c.now()})
}

func (c *Controller) changed() {
	if c.hooks.OnChange != nil {
		c.hooks.OnChange()
	}
}

// Transcript converts messages to the relay's wire turns.
func Transcript(messages []Message) []relay.Turn {
	turns := make([]relay.Turn, 0, len(messages))
	for _, m := range messages {
		role := relay.RoleAssistant
		if m.Speaker == SpeakerUser {
			role = relay.RoleUser
		}
		turns = append(turns, relay.Turn{Role: role, Content: m.Text})
	}
	return turns
}
