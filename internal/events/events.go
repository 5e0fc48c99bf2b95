// Package events defines the notifications the engine emits to its
// collaborators (renderer, quiz layer, score keeping).
package events

import (
	"time"

	"tetris-tsr/internal/catalog"
)

// Event is implemented by every engine notification.
type Event interface {
	Name() string
}

// PieceSpawned is emitted when a new current piece enters the board.
type PieceSpawned struct {
	Type catalog.ID
	Code string
}

// PieceLocked is emitted after a piece has been written into the board.
type PieceLocked struct {
	Type catalog.ID
}

// LinesCleared reports the rows removed by one lock, in detection order
// (bottom to top).
type LinesCleared struct {
	Rows  []int
	Count int
}

type ScoreChanged struct {
	Score int
}

type LevelChanged struct {
	Level        int
	DropInterval time.Duration
}

type GameOver struct {
	FinalScore int
}

type Restarted struct{}

func (PieceSpawned) Name() string { return "PieceSpawned" }
func (PieceLocked) Name() string  { return "PieceLocked" }
func (LinesCleared) Name() string { return "LinesCleared" }
func (ScoreChanged) Name() string { return "ScoreChanged" }
func (LevelChanged) Name() string { return "LevelChanged" }
func (GameOver) Name() string     { return "GameOver" }
func (Restarted) Name() string    { return "Restarted" }

// Handler receives events synchronously.
type Handler func(Event)

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	handlers []Handler
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.handlers = append(b.handlers, h)
	idx := len(b.handlers) - 1
	return func() {
		if idx < len(b.handlers) {
			b.handlers[idx] = nil
		}
	}
}

// Emit delivers e to every live subscriber.
func (b *Bus) Emit(e Event) {
	for _, h := range b.handlers {
		if h != nil {
			h(e)
		}
	}
}

// Recorder collects events; handy for hosts that poll once per frame.
type Recorder struct {
	Events []Event
}

// Handle appends e.
func (r *Recorder) Handle(e Event) {
	r.Events = append(r.Events, e)
}

// Drain returns the recorded events and clears the buffer.
func (r *Recorder) Drain() []Event {
	out := r.Events
	r.Events = nil
	return out
}
