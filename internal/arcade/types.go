package arcade

import "time"

type Point struct {
	X, Y int
}

type Direction struct {
	X, Y int
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

type Status string

const (
	StatusPlaying     Status = "playing"
	StatusPaused      Status = "paused"
	StatusBatteryDead Status = "battery-dead"
	StatusWon         Status = "won"
)

// Event reports what a transition did so the loop can react without
// diffing sessions.
type Event int

const (
	EventNone Event = iota
	EventMoved
	EventAte
	EventCollided
	EventWon
	EventDrained
	EventDepleted
)

const MaxBattery = 100

type Session struct {
	Snake     []Point
	Direction Direction
	Apple     Point
	Score     int
	Battery   int
	Status    Status
}

func (s Session) Head() Point {
	if len(s.Snake) == 0 {
		return Point{}
	}
	return s.Snake[0]
}

// Clone returns a copy that shares no backing array with s.
func (s Session) Clone() Session {
	out := s
	out.Snake = append([]Point(nil), s.Snake...)
	return out
}

type Config struct {
	GridSize       int
	TickInterval   time.Duration
	DrainInterval  time.Duration
	TargetScore    int
	StartBattery   int
	Start          Point
	StartDirection Direction
	Apple          Point
	WinDelay       time.Duration

	DistractionChance float64
	DistractionMin    time.Duration
	DistractionMax    time.Duration
	DistractionShow   time.Duration
}

func DefaultConfig() Config {
	return Config{
		GridSize:          8,
		TickInterval:      200 * time.Millisecond,
		DrainInterval:     time.Second,
		TargetScore:       2,
		StartBattery:      40,
		Start:             Point{X: 2, Y: 2},
		StartDirection:    Right,
		Apple:             Point{X: 7, Y: 7},
		WinDelay:          3 * time.Second,
		DistractionChance: 0.1,
		DistractionMin:    5 * time.Second,
		DistractionMax:    15 * time.Second,
		DistractionShow:   2 * time.Second,
	}
}
