package vocabcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The flashcard manager exports card caches as JSON files. This package
// only reads them; building and refreshing the caches is the exporter's
// job.

type Metadata struct {
	NoteType    string `json:"note_type"`
	FieldName   string `json:"field_name"`
	LastUpdated string `json:"last_updated"`
	TotalCards  int    `json:"total_cards"`
}

type card struct {
	Expression string `json:"expression"`
}

type cacheFile struct {
	Metadata Metadata        `json:"metadata"`
	Cards    map[string]card `json:"cards"`
}

// Info describes one available cache without loading its cards.
type Info struct {
	Filename    string
	NoteType    string
	FieldName   string
	LastUpdated string
	TotalCards  int
	Key         string
}

// List scans dir for cache files. Unreadable or malformed files are
// skipped rather than failing the listing.
func List(dir string) []Info {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	caches := []Info{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var cf cacheFile
		if err := json.Unmarshal(raw, &cf); err != nil {
			continue
		}
		if cf.Metadata.NoteType == "" && cf.Metadata.FieldName == "" {
			continue
		}
		caches = append(caches, Info{
			Filename:    entry.Name(),
			NoteType:    cf.Metadata.NoteType,
			FieldName:   cf.Metadata.FieldName,
			LastUpdated: cf.Metadata.LastUpdated,
			TotalCards:  cf.Metadata.TotalCards,
			Key:         cf.Metadata.NoteType + "_" + cf.Metadata.FieldName,
		})
	}
	return caches
}

// Load reads a cache file and extracts the vocabulary word set from the
// card expressions.
func Load(dir, filename string) (Metadata, map[string]struct{}, error) {
	raw, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("read cache: %w", err)
	}
	var cf cacheFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return Metadata{}, nil, fmt.Errorf("decode cache: %w", err)
	}

	vocabulary := make(map[string]struct{}, len(cf.Cards))
	for _, c := range cf.Cards {
		expr := strings.TrimSpace(c.Expression)
		if expr != "" {
			vocabulary[expr] = struct{}{}
		}
	}
	return cf.Metadata, vocabulary, nil
}

// LoadByKey finds the cache whose note-type/field key matches and loads
// it.
func LoadByKey(dir, key string) (Metadata, map[string]struct{}, error) {
	for _, info := range List(dir) {
		if info.Key == key {
			return Load(dir, info.Filename)
		}
	}
	return Metadata{}, nil, fmt.Errorf("no vocabulary cache with key %q", key)
}
