package scoring

import "time"

const (
	LinesPerLevel = 10

	BaseDropInterval = 1000 * time.Millisecond
	MinDropInterval  = 100 * time.Millisecond
	DropIntervalStep = 100 * time.Millisecond
)

// LevelForLines returns the level reached after clearing lines rows in total.
func LevelForLines(lines int) int {
	if lines < 0 {
		lines = 0
	}
	return lines/LinesPerLevel + 1
}

// DropInterval returns the gravity interval for level, clamped at
// MinDropInterval.
func DropInterval(level int) time.Duration {
	d := BaseDropInterval - time.Duration(level-1)*DropIntervalStep
	if d < MinDropInterval {
		return MinDropInterval
	}
	return d
}

// Scoring tracks the running score, line count and level of one game.
type Scoring struct {
	CurrentScore int
	Lines        int
	Level        int
	Interval     time.Duration
	// private
	scoreTable map[string]int
}

// NewScoring returns a score record for a fresh game.
func NewScoring() *Scoring {
	s := &Scoring{scoreTable: getScoreTable()}
	s.Reset()
	return s
}

// Reset puts the record back to score 0, level 1.
func (s *Scoring) Reset() {
	s.CurrentScore = 0
	s.Lines = 0
	s.Level = LevelForLines(0)
	s.Interval = DropInterval(s.Level)
}

// Points returns what n occurrences of event are worth at the current
// level, without applying them.
func (s *Scoring) Points(event string, n int) int {
	if n <= 0 {
		return 0
	}
	switch event {
	case "lineClear":
		return s.scoreTable[event] * n * s.Level
	default:
		return s.scoreTable[event] * n
	}
}

// ScoreEvent adds the points for n occurrences of event and returns them.
func (s *Scoring) ScoreEvent(event string, n int) int {
	pts := s.Points(event, n)
	s.CurrentScore += pts
	return pts
}

// ClearLines scores a single lock that removed n rows. The line bonus uses
// the level in effect before the clear; level and interval are recomputed
// afterwards.
func (s *Scoring) ClearLines(n int) (points int, levelChanged bool) {
	if n <= 0 {
		return 0, false
	}
	points = s.ScoreEvent("lineClear", n)
	s.Lines += n

	prev := s.Level
	s.Level = LevelForLines(s.Lines)
	s.Interval = DropInterval(s.Level)
	return points, s.Level != prev
}

// getScoreTable returns the predefined values for different scoring events.
func getScoreTable() map[string]int {
	return map[string]int{
		"hardDropRow": 2,
		"lineClear":   100,
	}
}
