package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"

	"swampcaptcha/internal/arcade"
	"swampcaptcha/internal/chat"
	"swampcaptcha/internal/challenges"
	"swampcaptcha/internal/clock"
	flow "swampcaptcha/internal/progress"
	"swampcaptcha/internal/relay"
	"swampcaptcha/internal/telemetry"
)

var errNoRelay = errors.New("no relay configured")

type applyMsg struct {
	fn func(*Root)
}

type clockMsg time.Time
type animateMsg time.Time

// relayMsg carries a finished relay call back onto the event loop. talk
// identifies the conversation that asked, so a reply for a closed overlay is
// dropped.
type relayMsg struct {
	talk  *chat.Controller
	reply relay.Reply
	err   error
}

type Root struct {
	opts   Options
	theme  Theme
	ascii  bool
	motion string
	logger telemetry.Logger
	ctx    context.Context

	mu      sync.Mutex
	program *tea.Program
	running bool
	stopped bool

	layout LayoutMode
	cols   int
	rows   int

	sched   clock.Scheduler
	rng     arcade.Rand
	flow    *flow.Controller
	game    *arcade.Game
	talk    *chat.Controller
	mounted flow.Stage

	statusFlash string
	lastInput   string

	help     help.Model
	keys     keyMap
	battery  progress.Model
	spin     spinner.Model
	input    textinput.Model
	chatView viewport.Model
	markdown *glamour.TermRenderer
	spring   harmonica.Spring
	smsPos   float64
	smsVel   float64
}

func New(opts Options) *Root {
	if opts.Logger == nil {
		opts.Logger = telemetry.Nop{}
	}
	if opts.Challenges.Kind == "" {
		opts.Challenges = challenges.Default()
	}
	theme := ThemeForVariant(normalizeStyleVariant(opts.StyleVariant))
	motion := normalizeMotionLevel(opts.MotionLevel)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(60),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()

	spring := harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8)
	if motion == "reduced" {
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	}

	colors := make([]color.Color, 0, len(theme.BatteryColors))
	for _, c := range theme.BatteryColors {
		colors = append(colors, lipgloss.Color(c))
	}
	battery := progress.New(
		progress.WithWidth(20),
		progress.WithColors(colors...),
		progress.WithScaled(true),
		progress.WithoutPercentage(),
	)

	in := textinput.New()
	in.Placeholder = "Tell the ogre why you're here..."
	in.Prompt = "> "
	in.CharLimit = 500
	in.SetWidth(50)

	transcript := viewport.New(viewport.WithWidth(70), viewport.WithHeight(10))
	transcript.SoftWrap = true

	r := &Root{
		opts:     opts,
		theme:    theme,
		ascii:    opts.ASCIIOnly,
		motion:   motion,
		logger:   opts.Logger,
		ctx:      context.Background(),
		cols:     80,
		rows:     24,
		layout:   DetermineLayoutMode(80, 24),
		rng:      opts.Rand,
		help:     h,
		keys:     newKeyMap(),
		battery:  battery,
		spin:     spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.Accent)),
		input:    in,
		chatView: transcript,
		markdown: renderer,
		spring:   spring,
	}
	r.sched = opts.Scheduler
	if r.sched == nil {
		r.sched = clock.NewTicker(func(fn func()) {
			r.apply(func(*Root) { fn() })
		})
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r.flow = flow.NewController(nil)
	return r
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(clockTickCmd(), spinnerTickCmd(r.spin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		r.input.SetWidth(max(10, r.chatWidth()-8))
		r.layoutTranscript()
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case relayMsg:
		if msg.talk == nil || msg.talk != r.talk {
			return r, nil
		}
		msg.talk.Resolve(msg.reply, msg.err)
		return r, nil
	case clockMsg:
		return r, clockTickCmd()
	case animateMsg:
		target := r.smsTarget()
		r.smsPos, r.smsVel = r.spring.Update(r.smsPos, r.smsVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		r.smsPos = target
		r.smsVel = 0
		return r, nil
	case tea.MouseWheelMsg:
		if r.talk == nil {
			return r, nil
		}
		var cmd tea.Cmd
		r.chatView, cmd = r.chatView.Update(msg)
		return r, cmd
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spin, cmd = r.spin.Update(msg)
		return r, cmd
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	if r.talk != nil {
		var cmd tea.Cmd
		r.input, cmd = r.input.Update(msg)
		return r, cmd
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			view = tea.NewView(r.theme.Fail.Width(width).Render(trimForWidth("UI recovered from a rendering panic. Check logs.", max(1, width-1))))
		}
	}()

	v := tea.NewView(r.render())
	v.AltScreen = true
	if r.talk != nil {
		v.MouseMode = tea.MouseModeCellMotion
	}
	return v
}

func (r *Root) render() string {
	if r.cols < 1 {
		r.cols = 80
	}
	if r.rows < 1 {
		r.rows = 24
	}

	var body string
	switch {
	case r.layout == LayoutTooSmall:
		body = r.renderTooSmall()
	case r.flow.View() == flow.ViewBot:
		body = r.renderBot()
	case r.flow.View() == flow.ViewSuccess:
		body = r.renderSuccess()
	case r.flow.ChallengeOpen() && r.mounted == flow.StageArcade && r.game != nil:
		body = r.renderArcade()
	case r.flow.ChallengeOpen() && r.mounted == flow.StageConversation && r.talk != nil:
		body = r.renderChat()
	default:
		body = r.renderLanding()
	}

	return strings.Join([]string{
		r.theme.Header.Width(r.cols).Render(trimForWidth(r.headerText(), max(1, r.cols-2))),
		lipgloss.Place(r.cols, max(1, r.rows-2), lipgloss.Center, lipgloss.Center, body),
		r.theme.Status.Width(r.cols).Render(r.statusText()),
	}, "\n")
}

// Run blocks until the program exits. Cancelling ctx stops it.
func (r *Root) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.ctx = ctx
	p := tea.NewProgram(r, tea.WithContext(ctx))
	r.program = p
	r.running = true
	r.mu.Unlock()

	r.logger.Info("ui.start", map[string]any{"view": string(r.flow.View())})
	_, err := p.Run()

	// Unmount while sends still target the finished program so a timer that
	// fires during teardown never runs inline against a half-closed stage.
	r.unmount()
	r.mu.Lock()
	r.program = nil
	r.running = false
	r.stopped = true
	r.mu.Unlock()

	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

// Progress reports the current counters and view.
func (r *Root) Progress() (flow.Progress, flow.View) {
	return r.flow.Progress(), r.flow.View()
}

// apply runs fn on the event goroutine, or inline before any program has
// started. Once Run returns nothing is applied.
func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(msg.String())
	if msg.String() == "ctrl+c" {
		return r, tea.Quit
	}
	r.statusFlash = ""

	switch r.flow.View() {
	case flow.ViewBot:
		return r.handleBotKey(msg)
	case flow.ViewSuccess:
		r.keys.mode = helpDone
		if key.Matches(msg, r.keys.Quit) {
			return r, tea.Quit
		}
		return r, nil
	}
	if r.flow.ChallengeOpen() {
		switch r.mounted {
		case flow.StageArcade:
			return r.handleArcadeKey(msg)
		case flow.StageConversation:
			return r.handleChatKey(msg)
		}
	}
	return r.handleLandingKey(msg)
}

func (r *Root) handleLandingKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keys.Login):
		r.openChallenge()
	case key.Matches(msg, r.keys.Quit):
		return r, tea.Quit
	}
	return r, nil
}

func (r *Root) handleBotKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keys.Retry):
		r.flow.Reset()
		r.logger.Info("challenge.reset", nil)
		r.emit(EventReset, "")
	case key.Matches(msg, r.keys.Quit):
		return r, tea.Quit
	}
	return r, nil
}

func (r *Root) handleArcadeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	g := r.game
	if g == nil {
		return r, nil
	}
	switch {
	case key.Matches(msg, r.keys.Close):
		g.Abandon()
		r.closeOverlay()
	case key.Matches(msg, r.keys.Up):
		g.ChangeDirection(arcade.Up)
	case key.Matches(msg, r.keys.Down):
		g.ChangeDirection(arcade.Down)
	case key.Matches(msg, r.keys.Left):
		g.ChangeDirection(arcade.Left)
	case key.Matches(msg, r.keys.Right):
		g.ChangeDirection(arcade.Right)
	case key.Matches(msg, r.keys.Continue):
		g.Continue()
	case key.Matches(msg, r.keys.Pay), key.Matches(msg, r.keys.Borrow):
		if g.Session().Status == arcade.StatusBatteryDead {
			g.Recharge()
		}
	}
	return r, nil
}

func (r *Root) handleChatKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, r.keys.Close):
		r.fail(flow.StageConversation)
		r.closeOverlay()
		return r, nil
	case key.Matches(msg, r.keys.Send):
		return r, r.submit()
	case key.Matches(msg, r.keys.ScrollUp), key.Matches(msg, r.keys.ScrollDn):
		var cmd tea.Cmd
		r.chatView, cmd = r.chatView.Update(msg)
		return r, cmd
	}
	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd
}

// submit accepts the typed line and hands the relay call to a command so the
// event loop keeps drawing while the script runs.
func (r *Root) submit() tea.Cmd {
	talk := r.talk
	if talk == nil {
		return nil
	}
	pending, err := talk.Begin(r.input.Value())
	if err != nil {
		if !errors.Is(err, chat.ErrEmpty) {
			r.statusFlash = err.Error()
		}
		return nil
	}
	r.input.Reset()
	sender := r.opts.Sender
	ctx := r.ctx
	return func() tea.Msg {
		if sender == nil {
			return relayMsg{talk: talk, err: errNoRelay}
		}
		reply, err := sender.Send(ctx, pending.Message, pending.History)
		return relayMsg{talk: talk, reply: reply, err: err}
	}
}

func (r *Root) openChallenge() {
	r.flow.Open()
	if !r.flow.ChallengeOpen() {
		return
	}
	r.mount(r.flow.ActiveStage())
}

func (r *Root) mount(stage flow.Stage) {
	r.unmount()
	switch stage {
	case flow.StageArcade:
		r.mounted = stage
		r.keys.mode = helpArcade
		r.game = arcade.NewGame(r.opts.Challenges.ArcadeConfig(), r.sched, r.rng, arcade.Hooks{
			OnFailure: func() { r.fail(flow.StageArcade) },
			OnSuccess: func() { r.pass(flow.StageArcade) },
		})
		r.game.Start()
	case flow.StageConversation:
		r.mounted = stage
		r.keys.mode = helpChat
		r.talk = chat.New(r.opts.Challenges.ChatConfig(), r.opts.Sender, r.sched, chat.Hooks{
			OnChange:  r.syncTranscript,
			OnSuccess: func() { r.pass(flow.StageConversation) },
			OnRelayError: func(err error) {
				r.logger.Error("chat.relay_failed", map[string]any{"error": err.Error()})
			},
		})
		r.input.Reset()
		_ = r.input.Focus()
		r.layoutTranscript()
	}
	r.logger.Info("challenge.open", map[string]any{"stage": string(stage)})
}

func (r *Root) unmount() {
	if r.game != nil {
		r.game.Close()
		r.game = nil
	}
	if r.talk != nil {
		r.talk.Close()
		r.talk = nil
		r.input.Blur()
	}
	r.mounted = ""
	r.smsPos, r.smsVel = 0, 0
	r.keys.mode = helpLanding
}

// pass records a passed challenge. Passing the arcade moves straight on to
// the conversation.
func (r *Root) pass(stage flow.Stage) {
	r.unmount()
	r.flow.Succeed(stage)
	r.record(EventSucceeded, stage)
	switch r.flow.View() {
	case flow.ViewSuccess:
		r.keys.mode = helpDone
	case flow.ViewHome:
		r.openChallenge()
	}
}

// fail records a failed attempt. The stage stays mounted so the arcade can
// show its collision card, unless the bot threshold takes over.
func (r *Root) fail(stage flow.Stage) {
	r.flow.Fail(stage)
	r.record(EventFailed, stage)
	if r.flow.View() == flow.ViewBot {
		r.unmount()
		r.keys.mode = helpBot
		return
	}
	if stage == flow.StageArcade {
		p := r.flow.Progress()
		r.statusFlash = fmt.Sprintf("Attempt failed (%d/%d)", p.Failures, flow.BotThreshold)
	}
}

// closeOverlay tears down the mounted stage and returns to the landing page
// without recording anything.
func (r *Root) closeOverlay() {
	if !r.flow.ChallengeOpen() {
		return
	}
	r.unmount()
	r.flow.Dismiss()
}

func (r *Root) record(kind EventKind, stage flow.Stage) {
	p := r.flow.Progress()
	r.logger.Info("challenge."+string(kind), map[string]any{
		"stage":     string(stage),
		"completed": p.Completed,
		"failures":  p.Failures,
		"view":      string(r.flow.View()),
	})
	r.emit(kind, stage)
}

func (r *Root) emit(kind EventKind, stage flow.Stage) {
	if r.opts.OnEvent == nil {
		return
	}
	r.opts.OnEvent(Event{Kind: kind, Stage: stage, Progress: r.flow.Progress()})
}

func (r *Root) smsTarget() float64 {
	if r.game != nil && r.game.DistractionOn() {
		return 1
	}
	return 0
}

func (r *Root) animateIfNeeded() tea.Cmd {
	if r.shouldAnimate(r.smsTarget()) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motion == "off" {
		return false
	}
	return abs(r.smsPos-target) > 0.001 || abs(r.smsVel) > 0.001
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func normalizeStyleVariant(v string) string {
	switch strings.TrimSpace(v) {
	case "swamp", "cozy", "nokia":
		return strings.TrimSpace(v)
	default:
		return "swamp"
	}
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func (r *Root) recordInputEvent(event string) {
	r.lastInput = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered", map[string]any{
		"where":       where,
		"panic":       fmt.Sprintf("%v", recovered),
		"messageType": msgType,
		"view":        string(r.flow.View()),
		"stage":       string(r.mounted),
		"cols":        r.cols,
		"rows":        r.rows,
		"last_input":  r.lastInput,
		"stack":       string(debug.Stack()),
	})
}

var _ tea.Model = (*Root)(nil)
