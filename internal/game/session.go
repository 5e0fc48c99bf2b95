package game

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/kamstrup/intmap"

	"tetris-tsr/internal/catalog"
	"tetris-tsr/internal/events"
	"tetris-tsr/internal/scoring"
)

// Session follows one Game across restarts for the host: it counts how
// often each catalog entry was locked (the codes the player has seen) and
// records finished games in the score history. Nothing about seen codes
// is persisted.
type Session struct {
	Game    *Game
	History *scoring.ScoreHistory // nil when scores are not kept
	Games   int

	// OnMilestone, when set, is called once per milestone as it is reached.
	OnMilestone func(Milestone)

	locks   *intmap.Map[int, int]
	reached []Milestone
	logger  *log.Logger
	lastErr error
}

// Milestone is a seen-codes goal.
type Milestone struct {
	Name  string
	Title string
	Seen  int
}

var milestones = []Milestone{
	{Name: "first-code", Title: "First code learned!", Seen: 1},
	{Name: "ten-codes", Title: "Ten codes learned!", Seen: 10},
}

// NewSession attaches to g. storage may be nil to disable the score
// history.
func NewSession(g *Game, storage scoring.ScoreStorage, logger *log.Logger) (*Session, error) {
	s := &Session{
		Game:   g,
		Games:  1,
		locks:  intmap.New[int, int](g.Catalog().Len()),
		logger: logger,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	if storage != nil {
		h, err := scoring.LoadHistory(storage)
		if err != nil {
			return nil, fmt.Errorf("failed to load score history: %w", err)
		}
		s.History = h
	}

	g.Subscribe(s.handle)
	return s, nil
}

func (s *Session) handle(e events.Event) {
	switch e := e.(type) {
	case events.PieceLocked:
		idx := s.Game.Catalog().IndexOf(e.Type)
		if idx < 0 {
			return
		}
		n, _ := s.locks.Get(idx)
		s.locks.Put(idx, n+1)
		if n == 0 {
			s.checkMilestones()
		}
	case events.GameOver:
		s.recordGame()
	case events.Restarted:
		s.Games++
	}
}

func (s *Session) recordGame() {
	if s.History == nil {
		return
	}
	s.History.Record(s.Game.State.Score)
	if err := s.History.Save(); err != nil {
		s.lastErr = err
		s.logger.Error("could not save score", "err", err)
		return
	}
	s.logger.Info("score saved", "score", s.Game.Score(), "games", s.Games)
}

func (s *Session) checkMilestones() {
	seen := s.locks.Len()
	for _, m := range milestones[len(s.reached):] {
		if seen < m.Seen {
			return
		}
		s.reached = append(s.reached, m)
		s.logger.Info("milestone", "name", m.Name, "seen", seen)
		if s.OnMilestone != nil {
			s.OnMilestone(m)
		}
	}
}

// Milestones returns the milestones reached this session, in order.
func (s *Session) Milestones() []Milestone {
	return append([]Milestone(nil), s.reached...)
}

// Locks returns how many pieces of type id have been locked this session.
func (s *Session) Locks(id catalog.ID) int {
	idx := s.Game.Catalog().IndexOf(id)
	if idx < 0 {
		return 0
	}
	n, _ := s.locks.Get(idx)
	return n
}

// Progress returns how many distinct catalog entries have been locked at
// least once, and the catalog size.
func (s *Session) Progress() (seen, total int) {
	return s.locks.Len(), s.Game.Catalog().Len()
}

// Err returns the last score storage error, if any.
func (s *Session) Err() error {
	return s.lastErr
}
