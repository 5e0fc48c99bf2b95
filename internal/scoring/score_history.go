package scoring

import (
	"fmt"
	"sort"
	"time"
)

// ScoreHistoryEntry is one finished game.
type ScoreHistoryEntry struct {
	Score     int    `json:"score"`
	Lines     int    `json:"lines"`
	Level     int    `json:"level"`
	Timestamp string `json:"timestamp"`
}

// ScoreHistory holds previous results and the entry for the game being
// played.
type ScoreHistory struct {
	Entries        []ScoreHistoryEntry
	HighScoreEntry *ScoreHistoryEntry
	CurrentScore   *ScoreHistoryEntry
	Attempts       int

	storage ScoreStorage
}

// LoadHistory reads all previous results from storage.
func LoadHistory(storage ScoreStorage) (*ScoreHistory, error) {
	entries, err := storage.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("could not load score history: %w", err)
	}

	sorted := make([]ScoreHistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	sh := &ScoreHistory{
		Entries:  sorted,
		Attempts: len(sorted),
		storage:  storage,
	}
	if len(sorted) > 0 {
		sh.HighScoreEntry = &sh.Entries[0]
	}
	return sh, nil
}

// Record sets the result of the current game from a score record.
func (sh *ScoreHistory) Record(s *Scoring) {
	sh.CurrentScore = &ScoreHistoryEntry{
		Score:     s.CurrentScore,
		Lines:     s.Lines,
		Level:     s.Level,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// GetHighScoreEntry returns the best previous result, or nil.
func (sh *ScoreHistory) GetHighScoreEntry() *ScoreHistoryEntry {
	return sh.HighScoreEntry
}

// GetNScoreEntries returns the top n results including the current game,
// sorted by score.
func (sh *ScoreHistory) GetNScoreEntries(n int) []ScoreHistoryEntry {
	all := make([]ScoreHistoryEntry, 0, len(sh.Entries)+1)
	all = append(all, sh.Entries...)
	if sh.CurrentScore != nil {
		all = append(all, *sh.CurrentScore)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Score > all[j].Score
	})

	if len(all) < n {
		return all
	}
	return all[:n]
}

// GotHighScore checks if the current score is greater than or equal to the
// previously recorded high score.
func (sh *ScoreHistory) GotHighScore() bool {
	if sh.HighScoreEntry == nil || sh.CurrentScore == nil {
		return true
	}
	return sh.CurrentScore.Score >= sh.HighScoreEntry.Score
}

// Save appends the current result to storage and starts a new attempt.
func (sh *ScoreHistory) Save() error {
	if sh.CurrentScore == nil {
		return nil
	}

	all, err := sh.storage.LoadAll()
	if err != nil {
		return fmt.Errorf("could not load scores for saving: %w", err)
	}
	all = append(all, *sh.CurrentScore)
	if err := sh.storage.SaveAll(all); err != nil {
		return err
	}

	sh.Entries = append(sh.Entries, *sh.CurrentScore)
	sort.SliceStable(sh.Entries, func(i, j int) bool {
		return sh.Entries[i].Score > sh.Entries[j].Score
	})
	sh.HighScoreEntry = &sh.Entries[0]
	sh.Attempts = len(sh.Entries)
	sh.CurrentScore = nil
	return nil
}
