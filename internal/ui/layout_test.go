package ui

import "testing"

func TestDetermineLayoutMode(t *testing.T) {
	if got := DetermineLayoutMode(140, 40); got != LayoutWide {
		t.Fatalf("expected wide, got %v", got)
	}
	if got := DetermineLayoutMode(80, 24); got != LayoutMedium {
		t.Fatalf("expected medium, got %v", got)
	}
	if got := DetermineLayoutMode(40, 30); got != LayoutTooSmall {
		t.Fatalf("expected too-small, got %v", got)
	}
	if got := DetermineLayoutMode(100, 20); got != LayoutTooSmall {
		t.Fatalf("expected too-small by height, got %v", got)
	}
}

func TestBoardLayoutKeepsWholeGridAndCapsCells(t *testing.T) {
	big := BoardLayout(200, 80, 8)
	if big.CellSize != maxCellSize || big.Size != maxCellSize*8 {
		t.Fatalf("expected capped cell size, got %+v", big)
	}
	small := BoardLayout(50, 22, 8)
	if small.CellSize != 1 || small.Grid != 8 || small.Size < 8 {
		t.Fatalf("expected whole grid at cell size 1, got %+v", small)
	}
}
