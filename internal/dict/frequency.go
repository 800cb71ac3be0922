package dict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
)

// FrequencyRecord is the resolved frequency rank for a word. Rank is
// 1-indexed; lower means more common. Source names the frequency
// dictionary that supplied the rank.
type FrequencyRecord struct {
	Rank   int
	Source string
	Found  bool
}

type termEntriesResponse struct {
	DictionaryEntries []dictionaryEntry `json:"dictionaryEntries"`
}

type dictionaryEntry struct {
	Headwords   []headword      `json:"headwords"`
	Frequencies []frequencyItem `json:"frequencies"`
}

type headword struct {
	Term    string `json:"term"`
	Reading string `json:"reading"`
}

type frequencyItem struct {
	Frequency  int    `json:"frequency"`
	Dictionary string `json:"dictionary"`
}

// Frequency resolves the frequency rank for the exact word. Only entries
// whose headword term or reading equals the input qualify; kana-to-kanji
// cross-form matching is deliberately not done here. Among qualifying
// entries the lowest rank wins. Positive results are cached for the
// client's lifetime; misses and failures are not, so a later successful
// lookup stays possible.
func (c *Client) Frequency(ctx context.Context, word string) FrequencyRecord {
	c.freqMu.Lock()
	if rec, ok := c.freqCache[word]; ok {
		c.freqMu.Unlock()
		return rec
	}
	c.freqMu.Unlock()

	rec, err := c.fetchFrequency(ctx, word)
	if err != nil {
		log.Printf("frequency lookup failed for %q: %v", word, err)
		return FrequencyRecord{}
	}
	if !rec.Found {
		return rec
	}

	c.freqMu.Lock()
	c.freqCache[word] = rec
	c.freqMu.Unlock()
	return rec
}

func (c *Client) fetchFrequency(ctx context.Context, word string) (FrequencyRecord, error) {
	payload, err := json.Marshal(map[string]string{"term": word})
	if err != nil {
		return FrequencyRecord{}, fmt.Errorf("marshal term request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/termEntries", bytes.NewReader(payload))
	if err != nil {
		return FrequencyRecord{}, fmt.Errorf("build term request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return FrequencyRecord{}, fmt.Errorf("term request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return FrequencyRecord{}, fmt.Errorf("term status %d", resp.StatusCode)
	}

	var decoded termEntriesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return FrequencyRecord{}, fmt.Errorf("decode term response: %w", err)
	}

	best := FrequencyRecord{}
	for _, entry := range decoded.DictionaryEntries {
		if !matchesExactly(entry.Headwords, word) {
			continue
		}
		for _, freq := range entry.Frequencies {
			if !best.Found || freq.Frequency < best.Rank {
				best = FrequencyRecord{Rank: freq.Frequency, Source: freq.Dictionary, Found: true}
			}
		}
	}
	return best, nil
}

func matchesExactly(headwords []headword, word string) bool {
	for _, hw := range headwords {
		if hw.Term == word || (hw.Reading != "" && hw.Reading == word) {
			return true
		}
	}
	return false
}

// CachedFrequencies reports how many words have resolved frequency data
// so far.
func (c *Client) CachedFrequencies() int {
	c.freqMu.Lock()
	defer c.freqMu.Unlock()
	return len(c.freqCache)
}
