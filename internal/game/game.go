package game

import (
	"time"

	"tetris-tsr/internal/board"
	"tetris-tsr/internal/catalog"
	"tetris-tsr/internal/events"
	"tetris-tsr/internal/state"
)

// Game is the engine's public face: commands in, snapshots and events out.
// It owns the gravity clock. Calls must come from a single goroutine.
type Game struct {
	State *state.State

	sinceDrop time.Duration
}

// PieceSnapshot is a copy of a piece safe to hand to a renderer.
type PieceSnapshot struct {
	Type  catalog.ID
	Code  string
	Shape [][]bool
	X, Y  int
}

// NewGame creates an engine. Call Init to spawn the first piece.
func NewGame(opts state.Options) (*Game, error) {
	if opts.Events == nil {
		opts.Events = &events.Bus{}
	}
	s, err := state.NewState(opts)
	if err != nil {
		return nil, err
	}
	return &Game{State: s}, nil
}

// Init starts the first game.
func (g *Game) Init() {
	g.sinceDrop = 0
	g.State.Start()
}

// Subscribe registers h for engine events.
func (g *Game) Subscribe(h events.Handler) (unsubscribe func()) {
	return g.State.Events().Subscribe(h)
}

// Tick advances the gravity clock by elapsed. Once the time accumulated
// since the last drop exceeds the drop interval, one gravity step runs
// (locking the piece if it cannot fall) and the accumulator restarts.
// It reports whether a gravity step ran.
func (g *Game) Tick(elapsed time.Duration) bool {
	if !g.State.Running {
		return false
	}
	g.sinceDrop += elapsed
	if g.sinceDrop <= g.State.Score.Interval {
		return false
	}
	g.State.Step()
	g.sinceDrop = 0
	return true
}

func (g *Game) MoveLeft() bool {
	return g.State.Move(-1, 0)
}

func (g *Game) MoveRight() bool {
	return g.State.Move(1, 0)
}

// SoftDrop moves the piece one row down. It never locks.
func (g *Game) SoftDrop() bool {
	return g.State.Move(0, 1)
}

func (g *Game) Rotate() bool {
	return g.State.Rotate()
}

// HardDrop drops and locks the current piece. It is a no-op once the game
// is over.
func (g *Game) HardDrop() {
	g.State.HardDrop()
}

// Restart resets the board, score and clock and spawns a new piece.
func (g *Game) Restart() {
	g.sinceDrop = 0
	g.State.Restart()
}

func (g *Game) SnapshotBoard() board.Grid {
	return g.State.Board.Snapshot()
}

// SnapshotCurrentPiece returns the falling piece, or false when there is
// none (after game over).
func (g *Game) SnapshotCurrentPiece() (PieceSnapshot, bool) {
	if g.State.Current == nil {
		return PieceSnapshot{}, false
	}
	p := g.State.Current
	return g.snapshot(p.Type, p.Shape, p.X, p.Y), true
}

// SnapshotNextPiece returns the preview piece.
func (g *Game) SnapshotNextPiece() (PieceSnapshot, bool) {
	if g.State.Next == nil {
		return PieceSnapshot{}, false
	}
	p := g.State.Next
	return g.snapshot(p.Type, p.Shape, p.X, p.Y), true
}

func (g *Game) snapshot(id catalog.ID, shape [][]bool, x, y int) PieceSnapshot {
	ps := PieceSnapshot{Type: id, Shape: catalog.CopyShape(shape), X: x, Y: y}
	if e, ok := g.State.Catalog().Lookup(id); ok {
		ps.Code = e.Code
	}
	return ps
}

// GhostY returns where the current piece would land on a hard drop.
func (g *Game) GhostY() (int, bool) {
	return g.State.GhostY()
}

func (g *Game) Score() int {
	return g.State.Score.CurrentScore
}

func (g *Game) Level() int {
	return g.State.Score.Level
}

func (g *Game) Lines() int {
	return g.State.Score.Lines
}

func (g *Game) DropInterval() time.Duration {
	return g.State.Score.Interval
}

func (g *Game) IsGameOver() bool {
	return g.State.IsGameOver()
}

func (g *Game) IsRunning() bool {
	return g.State.Running
}

func (g *Game) Phase() string {
	return g.State.Phase()
}

func (g *Game) Catalog() *catalog.Catalog {
	return g.State.Catalog()
}
