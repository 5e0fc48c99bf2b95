package scoring

import (
	"errors"
	"testing"
)

// TestLoadHistory_Empty verifies a history with no prior games.
func TestLoadHistory_Empty(t *testing.T) {
	sh, err := LoadHistory(&MockScoreStorage{})
	if err != nil {
		t.Fatalf("LoadHistory returned an unexpected error: %v", err)
	}
	if sh.Attempts != 0 {
		t.Errorf("expected 0 attempts, got %d", sh.Attempts)
	}
	if sh.GetHighScoreEntry() != nil {
		t.Errorf("expected nil high score, got %v", sh.GetHighScoreEntry())
	}
	if !sh.GotHighScore() {
		t.Error("no previous games should count as a high score")
	}
}

// TestLoadHistory_FindsHighScore verifies entries are sorted best first.
func TestLoadHistory_FindsHighScore(t *testing.T) {
	store := &MockScoreStorage{Entries: []ScoreHistoryEntry{
		{Score: 120}, {Score: 500}, {Score: 300},
	}}

	sh, err := LoadHistory(store)
	if err != nil {
		t.Fatalf("LoadHistory returned an unexpected error: %v", err)
	}
	if sh.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", sh.Attempts)
	}
	if sh.GetHighScoreEntry().Score != 500 {
		t.Errorf("expected high score 500, got %d", sh.GetHighScoreEntry().Score)
	}
	if store.Entries[0].Score != 120 {
		t.Error("loading must not reorder the storage slice")
	}
}

// TestLoadHistory_StorageError verifies storage errors are wrapped.
func TestLoadHistory_StorageError(t *testing.T) {
	boom := errors.New("boom")
	_, err := LoadHistory(&MockScoreStorage{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped storage error, got %v", err)
	}
}

// TestGetNScoreEntries_IncludesCurrent verifies the current game is ranked
// among the previous ones.
func TestGetNScoreEntries_IncludesCurrent(t *testing.T) {
	sh, _ := LoadHistory(&MockScoreStorage{Entries: []ScoreHistoryEntry{
		{Score: 100}, {Score: 300},
	}})

	s := NewScoring()
	s.CurrentScore = 200
	sh.Record(s)

	entries := sh.GetNScoreEntries(5)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{300, 200, 100} {
		if entries[i].Score != want {
			t.Errorf("entry %d: expected %d, got %d", i, want, entries[i].Score)
		}
	}
	if got := sh.GetNScoreEntries(1); len(got) != 1 || got[0].Score != 300 {
		t.Errorf("expected top entry 300, got %+v", got)
	}
	if sh.GotHighScore() {
		t.Error("200 is not a high score against 300")
	}
}

// TestSave appends the current game and updates the high score.
func TestSave(t *testing.T) {
	store := &MockScoreStorage{Entries: []ScoreHistoryEntry{{Score: 50}}}
	sh, _ := LoadHistory(store)

	s := NewScoring()
	s.CurrentScore = 700
	s.Lines = 12
	s.Level = 2
	sh.Record(s)

	if err := sh.Save(); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if len(store.Entries) != 2 {
		t.Fatalf("expected 2 stored entries, got %d", len(store.Entries))
	}
	last := store.Entries[1]
	if last.Score != 700 || last.Lines != 12 || last.Level != 2 || last.Timestamp == "" {
		t.Errorf("unexpected stored entry: %+v", last)
	}
	if sh.GetHighScoreEntry().Score != 700 {
		t.Errorf("expected new high score 700, got %d", sh.GetHighScoreEntry().Score)
	}
	if sh.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", sh.Attempts)
	}

	// Nothing recorded: saving again is a no-op.
	if err := sh.Save(); err != nil {
		t.Fatalf("second Save returned error: %v", err)
	}
	if len(store.Entries) != 2 {
		t.Errorf("expected no new entry, got %d", len(store.Entries))
	}
}
