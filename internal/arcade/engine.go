package arcade

// Rand is the subset of *math/rand.Rand the engine needs for apple placement.
type Rand interface {
	Intn(n int) int
}

// NewSession returns the opening state of a fresh game.
func NewSession(cfg Config) Session {
	return Session{
		Snake:     []Point{cfg.Start},
		Direction: cfg.StartDirection,
		Apple:     cfg.Apple,
		Score:     0,
		Battery:   clampBattery(cfg.StartBattery),
		Status:    StatusPlaying,
	}
}

// Restart resets the board after a collision. The battery comes back full.
func Restart(cfg Config) Session {
	s := NewSession(cfg)
	s.Battery = MaxBattery
	return s
}

// Step advances the snake by one cell. It is a no-op unless the session is
// playing.
func Step(cfg Config, s Session, rng Rand) (Session, Event) {
	if s.Status != StatusPlaying || len(s.Snake) == 0 {
		return s, EventNone
	}

	head := s.Head()
	next := Point{
		X: wrap(head.X+s.Direction.X, cfg.GridSize),
		Y: wrap(head.Y+s.Direction.Y, cfg.GridSize),
	}

	if occupies(s.Snake, next) {
		out := s.Clone()
		out.Status = StatusPaused
		return out, EventCollided
	}

	out := s.Clone()
	out.Snake = append([]Point{next}, out.Snake...)

	if next != s.Apple {
		out.Snake = out.Snake[:len(out.Snake)-1]
		return out, EventMoved
	}

	out.Score++
	// Placement may land on the body.
	out.Apple = Point{X: rng.Intn(cfg.GridSize), Y: rng.Intn(cfg.GridSize)}
	if out.Score >= cfg.TargetScore {
		out.Status = StatusWon
		return out, EventWon
	}
	return out, EventAte
}

// Turn applies a direction change. Changes along the current axis of movement
// are rejected, which also rules out instant reversal.
func Turn(s Session, d Direction) (Session, bool) {
	if s.Status != StatusPlaying {
		return s, false
	}
	if !validDirection(d) {
		return s, false
	}
	if s.Direction.X != 0 && d.X != 0 {
		return s, false
	}
	if s.Direction.Y != 0 && d.Y != 0 {
		return s, false
	}
	out := s.Clone()
	out.Direction = d
	return out, true
}

// Drain takes one unit of battery. Hitting zero parks the game until Recharge.
func Drain(s Session) (Session, Event) {
	if s.Status != StatusPlaying {
		return s, EventNone
	}
	out := s.Clone()
	if out.Battery <= 1 {
		out.Battery = 0
		out.Status = StatusBatteryDead
		return out, EventDepleted
	}
	out.Battery--
	return out, EventDrained
}

// Recharge refills the battery and resumes a dead game.
func Recharge(s Session) Session {
	out := s.Clone()
	out.Battery = MaxBattery
	if out.Status == StatusBatteryDead {
		out.Status = StatusPlaying
	}
	return out
}

func wrap(v, n int) int {
	if n <= 0 {
		return v
	}
	return ((v % n) + n) % n
}

func occupies(body []Point, p Point) bool {
	for _, seg := range body {
		if seg == p {
			return true
		}
	}
	return false
}

func validDirection(d Direction) bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	default:
		return false
	}
}

func clampBattery(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxBattery {
		return MaxBattery
	}
	return v
}
