package state

import (
	"tetris-tsr/internal/board"
	"tetris-tsr/internal/piece"
)

// spawnPosition centres p horizontally on the top row.
func spawnPosition(p *piece.Piece) (x, y int) {
	return board.Width/2 - p.Width()/2, 0
}

// CheckCollision reports whether p, shifted by (dx, dy), would overlap a
// wall, the floor or a locked cell. Cells above the top edge never collide
// on their own.
func (s *State) CheckCollision(p *piece.Piece, dx, dy int) bool {
	hit := false
	p.Cells(dx, dy, func(x, y int) bool {
		hit = s.Board.IsOccupied(x, y)
		return !hit
	})
	return hit
}

// GhostY returns the anchor row the current piece would come to rest on
// if hard dropped, or false when no piece is falling.
func (s *State) GhostY() (int, bool) {
	if s.Current == nil {
		return 0, false
	}
	dy := 0
	for !s.CheckCollision(s.Current, 0, dy+1) {
		dy++
	}
	return s.Current.Y + dy, true
}

func (s State) IsFalling() bool {
	return s.FSM.Is(StateFalling)
}

func (s State) IsGameOver() bool {
	return s.GameOver
}
