package piece

import "tetris-tsr/internal/catalog"

// Piece is a rigid shape with a board-relative anchor. X and Y locate the
// top-left cell of the shape matrix.
type Piece struct {
	Type  catalog.ID
	Shape [][]bool
	X, Y  int
}

// New returns an unplaced piece for a catalog entry.
func New(e catalog.Entry) *Piece {
	return &Piece{Type: e.ID, Shape: catalog.CopyShape(e.Shape)}
}

// Width is the width of the bounding box.
func (p *Piece) Width() int {
	if len(p.Shape) == 0 {
		return 0
	}
	return len(p.Shape[0])
}

// Height is the height of the bounding box.
func (p *Piece) Height() int {
	return len(p.Shape)
}

// Clone returns a deep copy.
func (p *Piece) Clone() *Piece {
	c := *p
	c.Shape = catalog.CopyShape(p.Shape)
	return &c
}

// Cells calls fn with the board coordinates of every occupied cell at the
// given offset from the anchor. Iteration stops when fn returns false.
func (p *Piece) Cells(dx, dy int, fn func(x, y int) bool) {
	for i, row := range p.Shape {
		for j, filled := range row {
			if !filled {
				continue
			}
			if !fn(p.X+dx+j, p.Y+dy+i) {
				return
			}
		}
	}
}

// Rotate returns the shape turned 90 degrees clockwise. The input is not
// modified; a rows x cols matrix becomes cols x rows.
func Rotate(shape [][]bool) [][]bool {
	rows := len(shape)
	if rows == 0 {
		return [][]bool{}
	}
	cols := len(shape[0])

	rotated := make([][]bool, cols)
	for i := 0; i < cols; i++ {
		rotated[i] = make([]bool, rows)
		for j := 0; j < rows; j++ {
			rotated[i][j] = shape[rows-1-j][i]
		}
	}
	return rotated
}
