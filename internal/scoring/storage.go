package scoring

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// MaxStoredScores caps the high-score file. Lower scores fall off when a
// save would exceed it.
const MaxStoredScores = 100

// ScoreStorage loads and saves finished games. Tests swap in an in-memory
// implementation.
type ScoreStorage interface {
	LoadAll() ([]ScoreHistoryEntry, error)
	// SaveAll replaces the stored games with entries.
	SaveAll(entries []ScoreHistoryEntry) error
}

// JSONFileStorage keeps one JSON object per line in a file.
type JSONFileStorage struct {
	path  string
	limit int
}

// NewJSONFileStorage stores scores under the user's config directory.
func NewJSONFileStorage() (*JSONFileStorage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not get user home directory: %w", err)
	}
	return NewJSONFileStorageAt(filepath.Join(homeDir, ".config", "tetris-tsr", "scores.json")), nil
}

// NewJSONFileStorageAt stores scores in the file at path.
func NewJSONFileStorageAt(path string) *JSONFileStorage {
	return &JSONFileStorage{path: path, limit: MaxStoredScores}
}

// WithLimit sets how many games SaveAll keeps. n <= 0 keeps everything.
func (jfs *JSONFileStorage) WithLimit(n int) *JSONFileStorage {
	jfs.limit = n
	return jfs
}

func (jfs *JSONFileStorage) Path() string {
	return jfs.path
}

// LoadAll returns the stored games in file order. A missing file is an
// empty history.
func (jfs *JSONFileStorage) LoadAll() ([]ScoreHistoryEntry, error) {
	file, err := os.Open(jfs.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []ScoreHistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open scores %s: %w", jfs.path, err)
	}
	defer file.Close()

	var entries []ScoreHistoryEntry
	decoder := json.NewDecoder(file)
	for line := 1; ; line++ {
		var entry ScoreHistoryEntry
		err := decoder.Decode(&entry)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode scores %s entry %d: %w", jfs.path, line, err)
		}
		entries = append(entries, entry)
	}
	if entries == nil {
		entries = []ScoreHistoryEntry{}
	}
	return entries, nil
}

// SaveAll writes the best games, highest score first, trimmed to the
// storage limit. The file is replaced by rename so a failed write leaves
// the previous history in place.
func (jfs *JSONFileStorage) SaveAll(entries []ScoreHistoryEntry) error {
	best := make([]ScoreHistoryEntry, len(entries))
	copy(best, entries)
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Score > best[j].Score
	})
	if jfs.limit > 0 && len(best) > jfs.limit {
		best = best[:jfs.limit]
	}

	dir := filepath.Dir(jfs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create scores directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".scores-*.json")
	if err != nil {
		return fmt.Errorf("create scores file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := bufio.NewWriter(tmp)
	encoder := json.NewEncoder(writer)
	for _, entry := range best {
		if err := encoder.Encode(entry); err != nil {
			tmp.Close()
			return fmt.Errorf("encode score: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write scores: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write scores: %w", err)
	}
	if err := os.Rename(tmp.Name(), jfs.path); err != nil {
		return fmt.Errorf("replace scores %s: %w", jfs.path, err)
	}
	return nil
}
