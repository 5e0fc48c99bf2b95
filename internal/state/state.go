package state

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/looplab/fsm"

	"tetris-tsr/internal/board"
	"tetris-tsr/internal/catalog"
	"tetris-tsr/internal/events"
	"tetris-tsr/internal/piece"
	"tetris-tsr/internal/scoring"
)

// Lifecycle phases of the piece controller.
const (
	StateIdle     = "idle"
	StateSpawning = "spawning"
	StateFalling  = "falling"
	StateLocking  = "locking"
	StateGameOver = "gameOver"
)

var ErrEmptyCatalog = errors.New("state: catalog has no piece types")

// Options configures a State. Zero values pick defaults: the classic
// catalog, a randomly seeded source, a discarding logger and a private
// event bus.
type Options struct {
	Catalog *catalog.Catalog
	Rand    *rand.Rand
	Logger  *log.Logger
	Events  *events.Bus
}

// State owns the board, the current and next pieces and the score record,
// and drives them through the spawn/fall/lock lifecycle. It is not safe
// for concurrent use.
type State struct {
	Board    *board.Board
	Current  *piece.Piece // nil between lock and spawn, and after game over
	Next     *piece.Piece
	Score    *scoring.Scoring
	FSM      *fsm.FSM
	Running  bool
	GameOver bool

	catalog *catalog.Catalog
	rng     *rand.Rand
	logger  *log.Logger
	bus     *events.Bus

	// generation is bumped by Restart. A command that sees it change
	// across an emit stops, since a handler started a new game under it.
	generation uint64
}

// NewState builds an idle controller. Call Start to spawn the first piece.
func NewState(opts Options) (*State, error) {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Events == nil {
		opts.Events = &events.Bus{}
	}

	s := &State{
		Board:   board.New(),
		Score:   scoring.NewScoring(),
		catalog: opts.Catalog,
		rng:     opts.Rand,
		logger:  opts.Logger,
		bus:     opts.Events,
	}

	s.FSM = fsm.NewFSM(
		StateIdle,
		getStateTransitions(),
		getStateCallbacks(s),
	)

	return s, nil
}

// Catalog returns the piece catalog in use.
func (s *State) Catalog() *catalog.Catalog {
	return s.catalog
}

// Events returns the bus the state emits on.
func (s *State) Events() *events.Bus {
	return s.bus
}

// Start fills the preview slot and spawns the first piece. It only acts
// from the idle phase.
func (s *State) Start() {
	if !s.FSM.Is(StateIdle) {
		return
	}
	s.GenerateNext()
	s.Running = true
	_ = s.FSM.Event(context.Background(), "start")
}

// Restart discards the current game and starts a new one. It may be
// called from any phase.
func (s *State) Restart() {
	s.Board.Reset()
	s.Score.Reset()
	s.Current = nil
	s.Next = nil
	s.Running = false
	s.GameOver = false
	s.FSM.SetState(StateIdle)
	s.generation++

	s.logger.Debug("restart", "generation", s.generation)
	if !s.emit(events.Restarted{}) {
		return
	}
	s.Start()
}

// GenerateNext picks a piece type uniformly at random and places a fresh,
// unplaced instance in the preview slot.
func (s *State) GenerateNext() {
	e := s.catalog.At(s.rng.IntN(s.catalog.Len()))
	s.Next = piece.New(e)
}

// Move translates the current piece by (dx, dy). It returns false, leaving
// the piece untouched, when the target collides or no piece is falling.
func (s *State) Move(dx, dy int) bool {
	if !s.IsFalling() || s.Current == nil {
		return false
	}
	if s.CheckCollision(s.Current, dx, dy) {
		return false
	}
	s.Current.X += dx
	s.Current.Y += dy
	return true
}

// Rotate turns the current piece clockwise in place. A rotation that
// would collide is discarded; there are no wall kicks.
func (s *State) Rotate() bool {
	if !s.IsFalling() || s.Current == nil {
		return false
	}
	candidate := s.Current.Clone()
	candidate.Shape = piece.Rotate(s.Current.Shape)
	if s.CheckCollision(candidate, 0, 0) {
		return false
	}
	s.Current.Shape = candidate.Shape
	return true
}

// HardDrop moves the current piece down until it rests, scores the rows
// travelled, and locks it. It returns false when no piece is falling.
func (s *State) HardDrop() bool {
	if !s.IsFalling() {
		return false
	}
	rows := 0
	for s.Move(0, 1) {
		rows++
	}
	if pts := s.Score.ScoreEvent("hardDropRow", rows); pts > 0 {
		if !s.emit(events.ScoreChanged{Score: s.Score.CurrentScore}) {
			return true
		}
	}
	s.Lock()
	return true
}

// Step performs one gravity step: move down, or lock when blocked. It
// reports whether the piece moved.
func (s *State) Step() bool {
	if !s.IsFalling() {
		return false
	}
	if s.Move(0, 1) {
		return true
	}
	s.Lock()
	return false
}

// Lock locks the current piece where it is and advances to the next one.
func (s *State) Lock() {
	_ = s.FSM.Event(context.Background(), "lock")
}

// Phase returns the current lifecycle phase.
func (s *State) Phase() string {
	return s.FSM.Current()
}

func getStateTransitions() []fsm.EventDesc {
	return fsm.Events{
		{Name: "start", Src: []string{StateIdle}, Dst: StateSpawning},
		{Name: "spawned", Src: []string{StateSpawning}, Dst: StateFalling},
		{Name: "blocked", Src: []string{StateSpawning}, Dst: StateGameOver},
		{Name: "lock", Src: []string{StateFalling}, Dst: StateLocking},
		{Name: "advance", Src: []string{StateLocking}, Dst: StateSpawning},
	}
}

func getStateCallbacks(s *State) map[string]fsm.Callback {
	return fsm.Callbacks{
		"enter_" + StateSpawning: func(ctx context.Context, e *fsm.Event) {
			gen := s.generation
			if !s.spawn() {
				e.FSM.Event(ctx, "blocked")
				return
			}
			if gen != s.generation {
				return
			}
			e.FSM.Event(ctx, "spawned")
		},
		"enter_" + StateLocking: func(ctx context.Context, e *fsm.Event) {
			if !s.lockAndClear() {
				return
			}
			e.FSM.Event(ctx, "advance")
		},
		"enter_" + StateGameOver: func(ctx context.Context, e *fsm.Event) {
			s.GameOver = true
			s.Running = false
			s.logger.Debug("game over", "score", s.Score.CurrentScore, "lines", s.Score.Lines, "level", s.Score.Level)
			s.bus.Emit(events.GameOver{FinalScore: s.Score.CurrentScore})
		},
	}
}

// spawn promotes Next to Current at the top centre of the board. When the
// spawn position collides nothing is changed and false is returned.
func (s *State) spawn() bool {
	if s.Next == nil {
		s.GenerateNext()
	}
	p := s.Next.Clone()
	p.X, p.Y = spawnPosition(p)
	if s.CheckCollision(p, 0, 0) {
		s.logger.Debug("spawn blocked", "type", p.Type, "x", p.X, "y", p.Y)
		return false
	}

	s.Current = p
	s.GenerateNext()

	code := ""
	if e, ok := s.catalog.Lookup(p.Type); ok {
		code = e.Code
	}
	s.logger.Debug("spawn", "type", p.Type, "next", s.Next.Type)
	s.bus.Emit(events.PieceSpawned{Type: p.Type, Code: code})
	return true
}

// emit publishes e and reports whether the game is still the one that
// emitted it, that is no handler restarted it.
func (s *State) emit(e events.Event) bool {
	gen := s.generation
	s.bus.Emit(e)
	return gen == s.generation
}

// lockAndClear writes the current piece into the board, removes full rows
// detected on that one post-lock grid, and updates the score record. It
// returns false when a handler restarted the game part way through.
func (s *State) lockAndClear() bool {
	p := s.Current
	if p == nil {
		return true
	}
	if dropped := s.Board.Lock(p); dropped > 0 {
		s.logger.Debug("lock dropped cells above the board", "type", p.Type, "cells", dropped)
	}
	s.Current = nil
	s.logger.Debug("lock", "type", p.Type, "x", p.X, "y", p.Y)
	if !s.emit(events.PieceLocked{Type: p.Type}) {
		return false
	}

	rows := s.Board.DetectFullRows()
	if len(rows) == 0 {
		return true
	}
	n := s.Board.ClearRows(rows)
	_, levelChanged := s.Score.ClearLines(n)

	s.logger.Debug("lines cleared", "rows", rows, "score", s.Score.CurrentScore, "lines", s.Score.Lines)
	if !s.emit(events.LinesCleared{Rows: rows, Count: n}) {
		return false
	}
	if !s.emit(events.ScoreChanged{Score: s.Score.CurrentScore}) {
		return false
	}
	if levelChanged {
		return s.emit(events.LevelChanged{Level: s.Score.Level, DropInterval: s.Score.Interval})
	}
	return true
}
