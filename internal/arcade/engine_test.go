package arcade

import "testing"

type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)] % n
	r.i++
	return v
}

func playing(snake []Point, dir Direction) Session {
	return Session{
		Snake:     snake,
		Direction: dir,
		Apple:     Point{X: 7, Y: 7},
		Battery:   50,
		Status:    StatusPlaying,
	}
}

func TestTurnRejectsSameAxisAndAcceptsPerpendicular(t *testing.T) {
	s := playing([]Point{{X: 3, Y: 3}}, Right)

	if _, ok := Turn(s, Left); ok {
		t.Fatalf("expected reversal to be rejected")
	}
	if _, ok := Turn(s, Right); ok {
		t.Fatalf("expected same-axis change to be rejected")
	}
	for _, d := range []Direction{Up, Down} {
		next, ok := Turn(s, d)
		if !ok {
			t.Fatalf("expected %v to be accepted while moving right", d)
		}
		if next.Direction != d {
			t.Fatalf("expected direction %v, got %v", d, next.Direction)
		}
	}

	v := playing([]Point{{X: 3, Y: 3}}, Up)
	if _, ok := Turn(v, Down); ok {
		t.Fatalf("expected vertical reversal to be rejected")
	}
	if got, _ := Turn(v, Down); got.Direction != Up {
		t.Fatalf("expected direction to stay up after rejection, got %v", got.Direction)
	}
}

func TestTurnIgnoredUnlessPlaying(t *testing.T) {
	s := playing([]Point{{X: 3, Y: 3}}, Right)
	s.Status = StatusBatteryDead
	if _, ok := Turn(s, Up); ok {
		t.Fatalf("expected direction change to be ignored while battery is dead")
	}
}

func TestTurnRejectsNonUnitVector(t *testing.T) {
	s := playing([]Point{{X: 3, Y: 3}}, Right)
	if _, ok := Turn(s, Direction{X: 0, Y: 2}); ok {
		t.Fatalf("expected non-unit direction to be rejected")
	}
}

func TestStepWrapsAroundEveryEdge(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name string
		from Point
		dir  Direction
		want Point
	}{
		{"left edge", Point{X: 0, Y: 4}, Left, Point{X: cfg.GridSize - 1, Y: 4}},
		{"right edge", Point{X: cfg.GridSize - 1, Y: 4}, Right, Point{X: 0, Y: 4}},
		{"top edge", Point{X: 4, Y: 0}, Up, Point{X: 4, Y: cfg.GridSize - 1}},
		{"bottom edge", Point{X: 4, Y: cfg.GridSize - 1}, Down, Point{X: 4, Y: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := playing([]Point{tc.from}, tc.dir)
			next, ev := Step(cfg, s, &seqRand{})
			if ev != EventMoved {
				t.Fatalf("expected move event, got %v", ev)
			}
			if next.Head() != tc.want {
				t.Fatalf("expected head %v, got %v", tc.want, next.Head())
			}
			if len(next.Snake) != 1 {
				t.Fatalf("expected steady length 1, got %d", len(next.Snake))
			}
		})
	}
}

func TestStepSelfCollisionPausesWithoutMutatingBody(t *testing.T) {
	cfg := DefaultConfig()
	body := []Point{{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 2}}
	s := playing(body, Right)

	next, ev := Step(cfg, s, &seqRand{})
	if ev != EventCollided {
		t.Fatalf("expected collision, got %v", ev)
	}
	if next.Status != StatusPaused {
		t.Fatalf("expected paused, got %s", next.Status)
	}
	if len(next.Snake) != len(body) {
		t.Fatalf("expected body length %d, got %d", len(body), len(next.Snake))
	}
	for i := range body {
		if next.Snake[i] != body[i] {
			t.Fatalf("body changed at %d: got %v want %v", i, next.Snake[i], body[i])
		}
	}

	again, ev := Step(cfg, next, &seqRand{})
	if ev != EventNone {
		t.Fatalf("expected no event while paused, got %v", ev)
	}
	if again.Head() != next.Head() || len(again.Snake) != len(next.Snake) {
		t.Fatalf("expected paused session to stay unchanged")
	}
}

func TestStepEatsAppleGrowsAndRelocates(t *testing.T) {
	cfg := DefaultConfig()
	s := playing([]Point{{X: 6, Y: 7}}, Right)

	next, ev := Step(cfg, s, &seqRand{vals: []int{1, 5}})
	if ev != EventAte {
		t.Fatalf("expected ate event, got %v", ev)
	}
	if next.Score != 1 {
		t.Fatalf("expected score 1, got %d", next.Score)
	}
	if len(next.Snake) != 2 {
		t.Fatalf("expected growth to length 2, got %d", len(next.Snake))
	}
	if next.Apple != (Point{X: 1, Y: 5}) {
		t.Fatalf("expected apple at (1,5), got %v", next.Apple)
	}
	if s.Score != 0 || len(s.Snake) != 1 {
		t.Fatalf("expected input session to be left untouched")
	}
}

func TestStepAppleMayLandOnBody(t *testing.T) {
	cfg := DefaultConfig()
	s := playing([]Point{{X: 6, Y: 7}}, Right)

	// Relocation picks (6,7), which is now the tail. The engine keeps it.
	next, _ := Step(cfg, s, &seqRand{vals: []int{6, 7}})
	if next.Apple != (Point{X: 6, Y: 7}) {
		t.Fatalf("expected apple to be placed over the body at (6,7), got %v", next.Apple)
	}
	if !occupies(next.Snake, next.Apple) {
		t.Fatalf("expected apple to overlap the snake body")
	}
}

func TestStepWinsExactlyOnce(t *testing.T) {
	cfg := DefaultConfig()
	s := playing([]Point{{X: 6, Y: 7}}, Right)
	s.Score = cfg.TargetScore - 1

	won, ev := Step(cfg, s, &seqRand{vals: []int{0, 0}})
	if ev != EventWon {
		t.Fatalf("expected won event, got %v", ev)
	}
	if won.Status != StatusWon || won.Score != cfg.TargetScore {
		t.Fatalf("expected won with score %d, got %s/%d", cfg.TargetScore, won.Status, won.Score)
	}

	for i := 0; i < 3; i++ {
		var ev2 Event
		won, ev2 = Step(cfg, won, &seqRand{})
		if ev2 != EventNone {
			t.Fatalf("expected no further events after win, got %v", ev2)
		}
	}
}

func TestDrainCountsDownAndDepletes(t *testing.T) {
	s := playing([]Point{{X: 1, Y: 1}}, Right)
	s.Battery = 3

	s, ev := Drain(s)
	if ev != EventDrained || s.Battery != 2 {
		t.Fatalf("expected battery 2, got %d (%v)", s.Battery, ev)
	}
	s, _ = Drain(s)
	s, ev = Drain(s)
	if ev != EventDepleted {
		t.Fatalf("expected depletion, got %v", ev)
	}
	if s.Battery != 0 || s.Status != StatusBatteryDead {
		t.Fatalf("expected dead battery at 0, got %d/%s", s.Battery, s.Status)
	}

	s, ev = Drain(s)
	if ev != EventNone || s.Battery != 0 {
		t.Fatalf("expected drain to stop at zero, got %d (%v)", s.Battery, ev)
	}

	if _, ev := Step(DefaultConfig(), s, &seqRand{}); ev != EventNone {
		t.Fatalf("expected movement to halt while battery is dead")
	}

	s = Recharge(s)
	if s.Battery != MaxBattery || s.Status != StatusPlaying {
		t.Fatalf("expected recharge to resume play at full battery, got %d/%s", s.Battery, s.Status)
	}
}

func TestRestartRefillsBattery(t *testing.T) {
	cfg := DefaultConfig()
	s := Restart(cfg)
	if s.Battery != MaxBattery {
		t.Fatalf("expected full battery after restart, got %d", s.Battery)
	}
	if s.Head() != cfg.Start || s.Score != 0 || s.Status != StatusPlaying {
		t.Fatalf("unexpected restart session: %+v", s)
	}
	if NewSession(cfg).Battery != cfg.StartBattery {
		t.Fatalf("expected new session to start at %d battery", cfg.StartBattery)
	}
}
