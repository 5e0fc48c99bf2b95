package scoring

import (
	"testing"
	"time"
)

// MockScoreStorage is a mock implementation of the ScoreStorage interface
// that stores score entries in memory. This is used for testing.
type MockScoreStorage struct {
	Entries []ScoreHistoryEntry
	err     error // To simulate errors from the storage layer.
}

// LoadAll returns the in-memory entries or a simulated error.
func (m *MockScoreStorage) LoadAll() ([]ScoreHistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.Entries, nil
}

// SaveAll replaces the in-memory entries with the provided slice or returns a simulated error.
func (m *MockScoreStorage) SaveAll(entries []ScoreHistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	m.Entries = entries
	return nil
}

// TestLevelAndInterval checks the level and drop interval formulas.
func TestLevelAndInterval(t *testing.T) {
	tests := []struct {
		lines    int
		level    int
		interval time.Duration
	}{
		{0, 1, 1000 * time.Millisecond},
		{9, 1, 1000 * time.Millisecond},
		{10, 2, 900 * time.Millisecond},
		{25, 3, 800 * time.Millisecond},
		{90, 10, 100 * time.Millisecond},
		{100, 11, 100 * time.Millisecond},
		{500, 51, 100 * time.Millisecond},
	}

	for _, tt := range tests {
		level := LevelForLines(tt.lines)
		if level != tt.level {
			t.Errorf("LevelForLines(%d) = %d, expected %d", tt.lines, level, tt.level)
		}
		if got := DropInterval(level); got != tt.interval {
			t.Errorf("DropInterval(%d) = %v, expected %v", level, got, tt.interval)
		}
	}
}

// TestNewScoring verifies a fresh record starts at score 0, level 1.
func TestNewScoring(t *testing.T) {
	s := NewScoring()
	if s.CurrentScore != 0 || s.Lines != 0 || s.Level != 1 {
		t.Errorf("unexpected initial record: %+v", s)
	}
	if s.Interval != time.Second {
		t.Errorf("expected 1s interval, got %v", s.Interval)
	}
}

// TestClearLines_UsesLevelBeforeRecompute checks the line bonus.
func TestClearLines_UsesLevelBeforeRecompute(t *testing.T) {
	s := NewScoring()
	s.Lines = 20
	s.Level = 3

	points, changed := s.ClearLines(2)
	if points != 600 {
		t.Errorf("expected 600 points for 2 lines at level 3, got %d", points)
	}
	if changed {
		t.Error("22 lines should still be level 3")
	}
	if s.CurrentScore != 600 || s.Lines != 22 {
		t.Errorf("unexpected record after clear: %+v", s)
	}
}

// TestClearLines_LevelUp checks the level and interval recompute.
func TestClearLines_LevelUp(t *testing.T) {
	s := NewScoring()
	s.Lines = 8

	points, changed := s.ClearLines(4)
	if points != 400 {
		t.Errorf("expected 400 points at level 1, got %d", points)
	}
	if !changed {
		t.Error("expected level change")
	}
	if s.Level != 2 || s.Interval != 900*time.Millisecond {
		t.Errorf("expected level 2 / 900ms, got %d / %v", s.Level, s.Interval)
	}
}

// TestClearLines_Zero checks that clearing nothing changes nothing.
func TestClearLines_Zero(t *testing.T) {
	s := NewScoring()
	points, changed := s.ClearLines(0)
	if points != 0 || changed || s.CurrentScore != 0 {
		t.Errorf("expected no-op, got points=%d changed=%v record=%+v", points, changed, s)
	}
}

// TestScoreEvent_HardDrop checks the per-row hard drop bonus.
func TestScoreEvent_HardDrop(t *testing.T) {
	s := NewScoring()
	s.Level = 7
	if got := s.ScoreEvent("hardDropRow", 5); got != 10 {
		t.Errorf("expected 10 points for 5 rows, got %d", got)
	}
	if s.CurrentScore != 10 {
		t.Errorf("expected score 10, got %d", s.CurrentScore)
	}
	if got := s.ScoreEvent("hardDropRow", 0); got != 0 {
		t.Errorf("expected 0 points for 0 rows, got %d", got)
	}
}

// TestReset checks Reset restores the initial record.
func TestReset(t *testing.T) {
	s := NewScoring()
	s.ScoreEvent("hardDropRow", 3)
	s.ClearLines(12)
	s.Reset()

	if s.CurrentScore != 0 || s.Lines != 0 || s.Level != 1 || s.Interval != time.Second {
		t.Errorf("expected reset record, got %+v", s)
	}
}
