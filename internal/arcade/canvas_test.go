package arcade

import "testing"

func TestFitCanvasKeepsWholeGrid(t *testing.T) {
	got := FitCanvas(216, 300, 8, 16, 8)
	if got.Size != 200 || got.CellSize != 25 {
		t.Fatalf("expected 200px canvas with 25px cells, got %+v", got)
	}

	tiny := FitCanvas(40, 40, 8, 16, 8)
	if tiny.CellSize != 8 {
		t.Fatalf("expected min cell size 8, got %d", tiny.CellSize)
	}
	if tiny.Size < tiny.CellSize*tiny.Grid {
		t.Fatalf("expected canvas to hold the whole grid, got %+v", tiny)
	}
}

func TestFrameMarksHeadBodyAndApple(t *testing.T) {
	s := Session{
		Snake: []Point{{X: 1, Y: 0}, {X: 0, Y: 0}},
		Apple: Point{X: 2, Y: 2},
	}
	f := Frame(s, 3)
	if f[0][1] != CellHead {
		t.Fatalf("expected head at (1,0), got %v", f[0][1])
	}
	if f[0][0] != CellBody {
		t.Fatalf("expected body at (0,0), got %v", f[0][0])
	}
	if f[2][2] != CellApple {
		t.Fatalf("expected apple at (2,2), got %v", f[2][2])
	}
	if f[1][1] != CellEmpty {
		t.Fatalf("expected empty cell at (1,1), got %v", f[1][1])
	}
}
