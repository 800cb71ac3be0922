package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const ignoredFileName = "ignored_words.json"

type ignoredFile struct {
	IgnoredWords []string `json:"ignored_words"`
	LastUpdated  string   `json:"last_updated"`
}

// LoadIgnored reads the ignored-word set from dataDir. A missing file
// means an empty set.
func LoadIgnored(dataDir string) (map[string]struct{}, error) {
	raw, err := os.ReadFile(filepath.Join(dataDir, ignoredFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("read ignored words: %w", err)
	}
	var f ignoredFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode ignored words: %w", err)
	}

	set := make(map[string]struct{}, len(f.IgnoredWords))
	for _, w := range f.IgnoredWords {
		w = strings.TrimSpace(w)
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set, nil
}

// SaveIgnored writes the set back in sorted order so the file diffs
// cleanly between edits.
func SaveIgnored(dataDir string, words map[string]struct{}) error {
	list := make([]string, 0, len(words))
	for w := range words {
		list = append(list, w)
	}
	sort.Strings(list)

	f := ignoredFile{
		IgnoredWords: list,
		LastUpdated:  time.Now().Format(time.RFC3339),
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ignored words: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, ignoredFileName), raw, 0o644); err != nil {
		return fmt.Errorf("write ignored words: %w", err)
	}
	return nil
}

// AddIgnored adds a word and persists the set. Adding an existing word
// is a no-op.
func AddIgnored(dataDir, word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return fmt.Errorf("empty word")
	}
	set, err := LoadIgnored(dataDir)
	if err != nil {
		return err
	}
	if _, ok := set[word]; ok {
		return nil
	}
	set[word] = struct{}{}
	return SaveIgnored(dataDir, set)
}

// RemoveIgnored removes a word and persists the set.
func RemoveIgnored(dataDir, word string) error {
	set, err := LoadIgnored(dataDir)
	if err != nil {
		return err
	}
	if _, ok := set[word]; !ok {
		return nil
	}
	delete(set, word)
	return SaveIgnored(dataDir, set)
}
