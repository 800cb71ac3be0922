package analyze

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"novel_lens/internal/chunk"
	"novel_lens/internal/dict"
	"novel_lens/internal/jptext"
	"novel_lens/internal/pipeline"
	"novel_lens/internal/stats"
	"novel_lens/internal/vocab"
)

const (
	// DefaultChunkSize bounds each tokenize request; the dictionary
	// server degrades on longer inputs.
	DefaultChunkSize = 300

	// DefaultWorkers bounds concurrent frequency lookups.
	DefaultWorkers = 4
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Analyzer runs the vocabulary analysis pipeline against a dictionary
// server. Zero-value fields fall back to defaults.
type Analyzer struct {
	Dict       *dict.Client
	ChunkSize  int
	ScanLength int
	Workers    int
}

// NewAnalyzerFromEnv wires an analyzer from NVL_CHUNK_SIZE,
// NVL_SCAN_LENGTH and NVL_RESOLVE_WORKERS.
func NewAnalyzerFromEnv(client *dict.Client) *Analyzer {
	return &Analyzer{
		Dict:       client,
		ChunkSize:  envInt("NVL_CHUNK_SIZE", DefaultChunkSize),
		ScanLength: envInt("NVL_SCAN_LENGTH", dict.DefaultScanLength),
		Workers:    envInt("NVL_RESOLVE_WORKERS", DefaultWorkers),
	}
}

// Result is the completed analysis for one text.
type Result struct {
	TotalWords         int               `json:"total_words"`
	UniqueWords        int               `json:"unique_words"`
	Known              []vocab.WordEntry `json:"known_words"`
	Unknown            []vocab.WordEntry `json:"unknown_words"`
	Ignored            []vocab.WordEntry `json:"ignored_words"`
	KnownOccurrences   int               `json:"known_word_count"`
	UnknownOccurrences int               `json:"unknown_word_count"`
	IgnoredOccurrences int               `json:"ignored_word_count"`
	ComprehensionRate  float64           `json:"comprehension_rate"`
	DifficultyLevel    string            `json:"difficulty_level"`
	Stars              stats.StarStats   `json:"star_statistics"`
}

// Run executes the full pipeline: chunk, tokenize (degrading to the
// local fallback per chunk), filter, count, resolve frequencies,
// classify, dedupe, aggregate. It never fails because the dictionary
// server is down; the only error case is a text that yields no usable
// tokens at all.
func (a *Analyzer) Run(ctx context.Context, text string, vocabulary, ignored map[string]struct{}, onProgress ProgressFn) (*Result, error) {
	report(onProgress, Update{Stage: StageStarting, Message: "Starting vocabulary analysis", Progress: 0})

	report(onProgress, Update{Stage: StagePreprocessing, Message: "Preparing text for tokenization", Progress: 5})
	cleaned := strings.TrimSpace(htmlTagPattern.ReplaceAllString(text, ""))
	if cleaned == "" {
		report(onProgress, Update{Stage: StageError, Message: "No analyzable text", Progress: 0})
		return nil, fmt.Errorf("no analyzable text")
	}

	tokens := a.tokenize(ctx, cleaned, onProgress)

	report(onProgress, Update{Stage: StageFiltering, Message: fmt.Sprintf("Filtering %d tokens", len(tokens)), Progress: 60})
	filtered := jptext.FilterTokens(tokens)
	if len(filtered) == 0 {
		report(onProgress, Update{Stage: StageError, Message: "Tokenization produced no usable tokens", Progress: 0})
		return nil, fmt.Errorf("tokenization produced no usable tokens")
	}

	counts := vocab.CountWords(filtered)
	frequencies := a.resolveFrequencies(ctx, counts, onProgress)

	known := []vocab.WordEntry{}
	unknown := []vocab.WordEntry{}
	ignoredEntries := []vocab.WordEntry{}
	for _, wc := range counts {
		rec := frequencies[wc.Word]
		category := vocab.Classify(wc.Word, vocabulary, ignored)
		entry := vocab.WordEntry{
			Word:         wc.Word,
			Count:        wc.Count,
			HasFrequency: rec.Found,
			Rank:         rec.Rank,
			Source:       rec.Source,
			InVocabulary: category == vocab.Known,
			IsIgnored:    category == vocab.Ignored,
		}
		switch category {
		case vocab.Ignored:
			ignoredEntries = append(ignoredEntries, entry)
		case vocab.Known:
			known = append(known, entry)
		default:
			unknown = append(unknown, entry)
		}
	}

	known = vocab.Dedupe(known)
	unknown = vocab.Dedupe(unknown)
	ignoredEntries = vocab.Dedupe(ignoredEntries)

	knownOcc := vocab.TotalOccurrences(known)
	unknownOcc := vocab.TotalOccurrences(unknown)
	ignoredOcc := vocab.TotalOccurrences(ignoredEntries)

	rate := stats.ComprehensionRate(knownOcc, unknownOcc)
	result := &Result{
		TotalWords:         len(filtered),
		UniqueWords:        len(counts),
		Known:              known,
		Unknown:            unknown,
		Ignored:            ignoredEntries,
		KnownOccurrences:   knownOcc,
		UnknownOccurrences: unknownOcc,
		IgnoredOccurrences: ignoredOcc,
		ComprehensionRate:  rate,
		DifficultyLevel:    stats.DifficultyLevel(rate),
		Stars:              stats.Aggregate(known, ignoredEntries, unknown),
	}

	report(onProgress, Update{
		Stage:    StageComplete,
		Message:  fmt.Sprintf("Analysis complete: %d unique words, %.1f%% comprehension", result.UniqueWords, result.ComprehensionRate),
		Progress: 100,
	})
	return result, nil
}

// tokenize walks the chunks in order, one request at a time, so chunk
// progress stays monotonic. A failed request degrades that chunk to the
// local fallback segmenter instead of aborting the run.
func (a *Analyzer) tokenize(ctx context.Context, text string, onProgress ProgressFn) []string {
	chunkSize := a.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	scanLength := a.ScanLength
	if scanLength <= 0 {
		scanLength = dict.DefaultScanLength
	}

	chunks := chunk.Split(text, chunkSize)
	if len(chunks) > 1 {
		report(onProgress, Update{
			Stage:       StageChunking,
			Message:     fmt.Sprintf("Split text into %d chunks", len(chunks)),
			Progress:    10,
			TotalChunks: len(chunks),
		})
	}

	tokens := []string{}
	for _, c := range chunks {
		report(onProgress, Update{
			Stage:           StageTokenizing,
			Message:         fmt.Sprintf("Processing chunk %d of %d", c.Index+1, len(chunks)),
			Progress:        10 + c.Index*50/len(chunks),
			TotalChunks:     len(chunks),
			CompletedChunks: c.Index,
		})

		chunkTokens, err := a.Dict.TokenizeChunk(ctx, c.Text, scanLength)
		if err != nil {
			log.Printf("chunk %d: dictionary server tokenization failed, using fallback: %v", c.Index, err)
			chunkTokens = jptext.FallbackTokenize(c.Text)
		}
		tokens = append(tokens, chunkTokens...)

		report(onProgress, Update{
			Stage:           StageTokenizing,
			Message:         fmt.Sprintf("Completed chunk %d of %d (%d tokens)", c.Index+1, len(chunks), len(chunkTokens)),
			Progress:        10 + (c.Index+1)*50/len(chunks),
			TotalChunks:     len(chunks),
			CompletedChunks: c.Index + 1,
		})
	}
	return tokens
}

// resolveFrequencies looks up every unique word on a bounded worker
// pool. The dict client's cache is already safe for concurrent use; the
// local result map gets its own lock.
func (a *Analyzer) resolveFrequencies(ctx context.Context, counts []vocab.WordCount, onProgress ProgressFn) map[string]dict.FrequencyRecord {
	words := make([]string, len(counts))
	for i, wc := range counts {
		words[i] = wc.Word
	}

	var mu sync.Mutex
	resolved := make(map[string]dict.FrequencyRecord, len(words))
	processed := 0
	total := len(words)

	pipeline.ResolveWords(words, a.Workers, func(word string) {
		rec := a.Dict.Frequency(ctx, word)

		mu.Lock()
		resolved[word] = rec
		processed++
		done := processed
		mu.Unlock()

		report(onProgress, Update{
			Stage:    StageVocabularyLookup,
			Message:  fmt.Sprintf("Resolving word %d/%d", done, total),
			Progress: 60 + done*35/total,
		})
	})
	return resolved
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
