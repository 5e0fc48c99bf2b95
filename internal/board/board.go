// Package board holds the grid of locked cells and the line-clear rules.
package board

import (
	"tetris-tsr/internal/catalog"
	"tetris-tsr/internal/piece"
)

const (
	Width  = 10
	Height = 20
)

// Grid is a snapshot of the board, indexed [y][x] with y=0 at the top.
type Grid [Height][Width]catalog.ID

// Board is the fixed-size grid of locked cells. It never references a
// falling piece.
type Board struct {
	cells Grid
}

func New() *Board {
	return &Board{}
}

// Reset empties every cell.
func (b *Board) Reset() {
	b.cells = Grid{}
}

// Snapshot returns a copy of the grid.
func (b *Board) Snapshot() Grid {
	return b.cells
}

// Cell returns the id locked at (x, y), or catalog.Empty.
func (b *Board) Cell(x, y int) catalog.ID {
	if !inside(x, y) {
		return catalog.Empty
	}
	return b.cells[y][x]
}

// Set writes id into (x, y). Coordinates off the board are ignored.
func (b *Board) Set(x, y int, id catalog.ID) {
	if inside(x, y) {
		b.cells[y][x] = id
	}
}

// IsOccupied reports whether (x, y) blocks a piece. Cells left, right or
// below the grid are occupied; cells above the top edge never are.
func (b *Board) IsOccupied(x, y int) bool {
	if x < 0 || x >= Width || y >= Height {
		return true
	}
	if y < 0 {
		return false
	}
	return b.cells[y][x] != catalog.Empty
}

// Lock writes the piece's type into every occupied cell it covers and
// returns how many cells were dropped because they were above the top edge.
func (b *Board) Lock(p *piece.Piece) (dropped int) {
	p.Cells(0, 0, func(x, y int) bool {
		if y < 0 {
			dropped++
			return true
		}
		b.Set(x, y, p.Type)
		return true
	})
	return dropped
}

// DetectFullRows returns the indices of completely filled rows, scanning
// from the bottom row upwards.
func (b *Board) DetectFullRows() []int {
	var rows []int
	for y := Height - 1; y >= 0; y-- {
		if b.rowFull(y) {
			rows = append(rows, y)
		}
	}
	return rows
}

func (b *Board) rowFull(y int) bool {
	for _, cell := range b.cells[y] {
		if cell == catalog.Empty {
			return false
		}
	}
	return true
}

// ClearRows removes the given rows and shifts everything above them down,
// inserting one empty row at the top per removed row. The indices refer to
// the grid as it is before the call; duplicates and out-of-range values
// are ignored. It returns the number of rows removed.
func (b *Board) ClearRows(rows []int) int {
	var remove [Height]bool
	n := 0
	for _, y := range rows {
		if y < 0 || y >= Height || remove[y] {
			continue
		}
		remove[y] = true
		n++
	}
	if n == 0 {
		return 0
	}

	var next Grid
	dst := Height - 1
	for y := Height - 1; y >= 0; y-- {
		if remove[y] {
			continue
		}
		next[dst] = b.cells[y]
		dst--
	}
	b.cells = next
	return n
}

// Filled counts non-empty cells.
func (b *Board) Filled() int {
	n := 0
	for y := range b.cells {
		for _, cell := range b.cells[y] {
			if cell != catalog.Empty {
				n++
			}
		}
	}
	return n
}

func inside(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}
