package arcade

import (
	"time"

	"swampcaptcha/internal/clock"
)

// Hooks are the caller's view of the game. All of them are optional.
type Hooks struct {
	OnChange      func(Session)
	OnFailure     func()
	OnSuccess     func()
	OnDistraction func(visible bool)
}

// Game drives a Session from a Scheduler. It is not safe for concurrent use:
// the scheduler must deliver callbacks on the same goroutine that calls the
// Game's methods.
type Game struct {
	cfg   Config
	sched clock.Scheduler
	rng   Rand
	hooks Hooks

	sess        Session
	playTimers  []clock.Cancel
	winTimer    clock.Cancel
	hideSMS     clock.Cancel
	gen         int
	distraction bool
	succeeded   bool
	closed      bool
}

func NewGame(cfg Config, sched clock.Scheduler, rng Rand, hooks Hooks) *Game {
	return &Game{
		cfg:   cfg,
		sched: sched,
		rng:   rng,
		hooks: hooks,
		sess:  NewSession(cfg),
	}
}

// Start arms the timers for the current session. Calling it again while
// already playing re-arms from scratch.
func (g *Game) Start() {
	if g.closed {
		return
	}
	g.arm()
	g.changed()
}

func (g *Game) Session() Session    { return g.sess.Clone() }
func (g *Game) Config() Config      { return g.cfg }
func (g *Game) DistractionOn() bool { return g.distraction }

// ChangeDirection forwards to Turn and reports whether the change stuck.
func (g *Game) ChangeDirection(d Direction) bool {
	if g.closed {
		return false
	}
	next, ok := Turn(g.sess, d)
	if !ok {
		return false
	}
	g.sess = next
	g.changed()
	return true
}

// Recharge refills the battery and resumes movement if it had died.
func (g *Game) Recharge() {
	if g.closed || g.sess.Status == StatusWon {
		return
	}
	wasDead := g.sess.Status == StatusBatteryDead
	g.sess = Recharge(g.sess)
	if wasDead {
		g.arm()
	}
	g.changed()
}

// Continue starts a fresh board after a collision pause.
func (g *Game) Continue() {
	if g.closed || g.sess.Status != StatusPaused {
		return
	}
	g.sess = Restart(g.cfg)
	g.arm()
	g.changed()
}

// Abandon closes the game as a failed attempt. Closing on the collision card
// adds nothing: that failure was already reported.
func (g *Game) Abandon() {
	if g.closed {
		return
	}
	reported := g.sess.Status == StatusPaused
	g.Close()
	if !reported && g.hooks.OnFailure != nil {
		g.hooks.OnFailure()
	}
}

// Close cancels every timer. No callback mutates the session afterwards.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.disarm()
	if g.winTimer != nil {
		g.winTimer()
		g.winTimer = nil
	}
}

func (g *Game) arm() {
	g.disarm()
	if g.sess.Status != StatusPlaying {
		return
	}
	gen := g.gen
	g.playTimers = append(g.playTimers,
		g.sched.Every(g.cfg.TickInterval, g.guard(gen, g.tick)),
		g.sched.Every(g.cfg.DrainInterval, g.guard(gen, g.drain)),
	)
	if g.rollDistraction() {
		g.playTimers = append(g.playTimers, g.sched.After(g.distractionDelay(), g.guard(gen, g.showDistraction)))
	}
}

func (g *Game) disarm() {
	g.gen++
	for _, cancel := range g.playTimers {
		cancel()
	}
	g.playTimers = nil
	if g.hideSMS != nil {
		g.hideSMS()
		g.hideSMS = nil
	}
	g.setDistraction(false)
}

// guard drops callbacks that belong to an earlier arming or a closed game.
func (g *Game) guard(gen int, fn func()) func() {
	return func() {
		if g.closed || gen != g.gen {
			return
		}
		fn()
	}
}

func (g *Game) tick() {
	next, ev := Step(g.cfg, g.sess, g.rng)
	g.sess = next
	switch ev {
	case EventNone:
		return
	case EventCollided:
		g.disarm()
		g.changed()
		if g.hooks.OnFailure != nil {
			g.hooks.OnFailure()
		}
		return
	case EventWon:
		g.disarm()
		g.changed()
		g.winTimer = g.sched.After(g.cfg.WinDelay, g.succeed)
		return
	}
	g.changed()
}

func (g *Game) drain() {
	next, ev := Drain(g.sess)
	g.sess = next
	if ev == EventDepleted {
		g.disarm()
	}
	if ev != EventNone {
		g.changed()
	}
}

func (g *Game) succeed() {
	if g.closed || g.succeeded {
		return
	}
	g.succeeded = true
	g.winTimer = nil
	if g.hooks.OnSuccess != nil {
		g.hooks.OnSuccess()
	}
}

func (g *Game) rollDistraction() bool {
	if g.cfg.DistractionChance <= 0 || g.rng == nil {
		return false
	}
	return float64(g.rng.Intn(1000)) < g.cfg.DistractionChance*1000
}

func (g *Game) distractionDelay() time.Duration {
	span := g.cfg.DistractionMax - g.cfg.DistractionMin
	if span <= 0 {
		return g.cfg.DistractionMin
	}
	return g.cfg.DistractionMin + time.Duration(g.rng.Intn(int(span/time.Millisecond)))*time.Millisecond
}

func (g *Game) showDistraction() {
	g.setDistraction(true)
	gen := g.gen
	g.hideSMS = g.sched.After(g.cfg.DistractionShow, g.guard(gen, func() {
		g.hideSMS = nil
		g.setDistraction(false)
	}))
}

func (g *Game) setDistraction(on bool) {
	if g.distraction == on {
		return
	}
	g.distraction = on
	if g.hooks.OnDistraction != nil {
		g.hooks.OnDistraction(on)
	}
}

func (g *Game) changed() {
	if g.hooks.OnChange != nil {
		g.hooks.OnChange(g.sess.Clone())
	}
}
