package arcade

type CellKind int

const (
	CellEmpty CellKind = iota
	CellBody
	CellHead
	CellApple
)

type CanvasLayout struct {
	Size     int
	CellSize int
	Grid     int
}

// FitCanvas sizes a square canvas inside a w x h screen area. The grid is
// always whole: when the area is too small the cell size holds at minCell and
// the canvas overflows rather than dropping rows.
func FitCanvas(w, h, grid, pad, minCell int) CanvasLayout {
	if grid <= 0 {
		grid = 1
	}
	size := min(w-pad, h-pad)
	if size < 0 {
		size = 0
	}
	cell := max(size/grid, minCell)
	if cell < 1 {
		cell = 1
	}
	if size < cell*grid {
		size = cell * grid
	}
	return CanvasLayout{Size: size, CellSize: cell, Grid: grid}
}

// Frame projects the session onto a grid of cell kinds, row-major. The apple
// is drawn first so a body segment sitting on it wins.
func Frame(s Session, grid int) [][]CellKind {
	out := make([][]CellKind, grid)
	for y := range out {
		out[y] = make([]CellKind, grid)
	}
	put := func(p Point, k CellKind) {
		if p.X < 0 || p.Y < 0 || p.X >= grid || p.Y >= grid {
			return
		}
		out[p.Y][p.X] = k
	}
	put(s.Apple, CellApple)
	for i := len(s.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			put(s.Snake[i], CellHead)
			continue
		}
		put(s.Snake[i], CellBody)
	}
	return out
}
