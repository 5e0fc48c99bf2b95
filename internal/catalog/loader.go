package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// entryDoc is the on-disk form of one entry. A file holds a stream of
// YAML documents separated by "---", one entry per document.
type entryDoc struct {
	ID    string   `yaml:"id"`
	Code  string   `yaml:"code"`
	Shape []string `yaml:"shape"`
}

// Load reads catalog entries from a list of paths (files or directories)
// and builds a Catalog in the order the entries were read.
func Load(paths []string) (*Catalog, error) {
	var entries []Entry

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read dir %s: %w", path, err)
			}
			for _, entry := range files {
				if entry.IsDir() || !isYAML(entry.Name()) {
					continue
				}
				e, err := loadFile(filepath.Join(path, entry.Name()))
				if err != nil {
					return nil, err
				}
				entries = append(entries, e...)
			}
		} else {
			e, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e...)
		}
	}

	return New(entries)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func loadFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	entries, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Decode reads a YAML document stream of entries. Empty documents are
// skipped.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	decoder := yaml.NewDecoder(r)
	for {
		var doc entryDoc
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error decoding catalog document: %w", err)
		}
		if doc.ID == "" && doc.Code == "" && len(doc.Shape) == 0 {
			continue
		}
		e := Entry{
			ID:    ID(strings.TrimSpace(doc.ID)),
			Code:  doc.Code,
			Shape: ParseShape(doc.Shape),
		}
		if err := validate(e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
