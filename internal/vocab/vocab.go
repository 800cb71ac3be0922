package vocab

import "sort"

// Category is the classification bucket for a unique word relative to
// the reader's vocabulary and ignore sets.
type Category int

const (
	Unknown Category = iota
	Known
	Ignored
)

// WordEntry is the per-unique-word unit of analysis output.
type WordEntry struct {
	Word         string `json:"word"`
	Count        int    `json:"count"`
	HasFrequency bool   `json:"has_frequency"`
	Rank         int    `json:"rank,omitempty"`
	Source       string `json:"source,omitempty"`
	InVocabulary bool   `json:"in_vocabulary"`
	IsIgnored    bool   `json:"is_ignored"`
}

// WordCount pairs a word with its occurrence count, in first-seen order.
type WordCount struct {
	Word  string
	Count int
}

// CountWords tallies occurrences across the filtered token stream.
// First-seen order is preserved so downstream tie-breaking stays
// deterministic.
func CountWords(tokens []string) []WordCount {
	index := map[string]int{}
	counts := []WordCount{}
	for _, tok := range tokens {
		if i, ok := index[tok]; ok {
			counts[i].Count++
			continue
		}
		index[tok] = len(counts)
		counts = append(counts, WordCount{Word: tok, Count: 1})
	}
	return counts
}

// Classify buckets a word. Ignored takes precedence over Known; Known
// requires exact membership, with no stemming or cross-form matching.
func Classify(word string, vocabulary, ignored map[string]struct{}) Category {
	if _, ok := ignored[word]; ok {
		return Ignored
	}
	if _, ok := vocabulary[word]; ok {
		return Known
	}
	return Unknown
}

// Dedupe merges entries that share a display word, summing counts and
// keeping the first entry's frequency and classification fields. The
// result is sorted by descending count; ties keep first-seen order.
func Dedupe(entries []WordEntry) []WordEntry {
	index := map[string]int{}
	merged := make([]WordEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Word]; ok {
			merged[i].Count += e.Count
			continue
		}
		index[e.Word] = len(merged)
		merged = append(merged, e)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Count > merged[j].Count
	})
	return merged
}

// TotalOccurrences sums the counts across entries.
func TotalOccurrences(entries []WordEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return total
}
