package ui

import "swampcaptcha/internal/arcade"

func DetermineLayoutMode(cols, rows int) LayoutMode {
	if cols < 48 || rows < 22 {
		return LayoutTooSmall
	}
	if cols >= 100 && rows >= 30 {
		return LayoutWide
	}
	return LayoutMedium
}

// Terminal cells are roughly twice as tall as they are wide, so one grid
// cell is drawn two columns wide per row of height.
const cellAspect = 2

// boardChrome is the space the phone frame, score line and battery bar take
// around the screen.
const (
	boardChromeCols = 10
	boardChromeRows = 12
	maxCellSize     = 2
)

// BoardLayout fits the arcade grid into the terminal. The result is in grid
// cells: CellSize rows per cell, CellSize*2 columns per cell.
func BoardLayout(cols, rows, grid int) arcade.CanvasLayout {
	fit := arcade.FitCanvas((cols-boardChromeCols)/cellAspect, rows-boardChromeRows, grid, 0, 1)
	if fit.CellSize > maxCellSize {
		fit.CellSize = maxCellSize
		fit.Size = maxCellSize * fit.Grid
	}
	return fit
}
