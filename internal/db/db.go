package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"novel_lens/internal/analyze"
	"novel_lens/internal/vocab"
)

const schema = `
CREATE TABLE IF NOT EXISTS scan_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text_hash TEXT NOT NULL,
	filename TEXT,
	text_length INTEGER NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	comprehension_rate REAL NOT NULL,
	difficulty_level TEXT NOT NULL,
	total_words INTEGER NOT NULL,
	unique_words INTEGER NOT NULL,
	known_count INTEGER NOT NULL,
	unknown_count INTEGER NOT NULL,
	ignored_count INTEGER NOT NULL,
	known_words_json TEXT,
	unknown_words_json TEXT,
	ignored_words_json TEXT,
	star_stats_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_scan_history_hash ON scan_history(text_hash);
CREATE INDEX IF NOT EXISTS idx_scan_history_created ON scan_history(created_at);
`

// Store keeps completed scans in a sqlite database.
type Store struct {
	db *sql.DB
}

// Scan is one stored analysis run.
type Scan struct {
	ID                int64           `json:"id"`
	TextHash          string          `json:"text_hash"`
	Filename          string          `json:"filename"`
	TextLength        int             `json:"text_length"`
	CreatedAt         time.Time       `json:"created_at"`
	ComprehensionRate float64         `json:"comprehension_rate"`
	DifficultyLevel   string          `json:"difficulty_level"`
	TotalWords        int             `json:"total_words"`
	UniqueWords       int             `json:"unique_words"`
	KnownCount        int             `json:"known_count"`
	UnknownCount      int             `json:"unknown_count"`
	IgnoredCount      int             `json:"ignored_count"`
	Result            *analyze.Result `json:"result,omitempty"`
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: conn}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// HashText identifies a text independently of its filename.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// SaveScan stores a completed analysis and returns the row id.
func (s *Store) SaveScan(filename, text string, result *analyze.Result) (int64, error) {
	knownJSON, err := json.Marshal(result.Known)
	if err != nil {
		return 0, fmt.Errorf("encode known words: %w", err)
	}
	unknownJSON, err := json.Marshal(result.Unknown)
	if err != nil {
		return 0, fmt.Errorf("encode unknown words: %w", err)
	}
	ignoredJSON, err := json.Marshal(result.Ignored)
	if err != nil {
		return 0, fmt.Errorf("encode ignored words: %w", err)
	}
	starsJSON, err := json.Marshal(result.Stars)
	if err != nil {
		return 0, fmt.Errorf("encode star stats: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO scan_history (
			text_hash, filename, text_length,
			comprehension_rate, difficulty_level,
			total_words, unique_words,
			known_count, unknown_count, ignored_count,
			known_words_json, unknown_words_json, ignored_words_json, star_stats_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		HashText(text), filename, len([]rune(text)),
		result.ComprehensionRate, result.DifficultyLevel,
		result.TotalWords, result.UniqueWords,
		len(result.Known), len(result.Unknown), len(result.Ignored),
		string(knownJSON), string(unknownJSON), string(ignoredJSON), string(starsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("insert scan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ScanByID loads one scan including the full word lists.
func (s *Store) ScanByID(id int64) (*Scan, error) {
	row := s.db.QueryRow(`
		SELECT id, text_hash, filename, text_length, created_at,
			comprehension_rate, difficulty_level,
			total_words, unique_words, known_count, unknown_count, ignored_count,
			known_words_json, unknown_words_json, ignored_words_json, star_stats_json
		FROM scan_history WHERE id = ?`, id)

	var scan Scan
	var createdAt string
	var knownJSON, unknownJSON, ignoredJSON, starsJSON sql.NullString
	err := row.Scan(
		&scan.ID, &scan.TextHash, &scan.Filename, &scan.TextLength, &createdAt,
		&scan.ComprehensionRate, &scan.DifficultyLevel,
		&scan.TotalWords, &scan.UniqueWords,
		&scan.KnownCount, &scan.UnknownCount, &scan.IgnoredCount,
		&knownJSON, &unknownJSON, &ignoredJSON, &starsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scan %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load scan: %w", err)
	}
	scan.CreatedAt = parseTimestamp(createdAt)

	result := &analyze.Result{
		TotalWords:        scan.TotalWords,
		UniqueWords:       scan.UniqueWords,
		ComprehensionRate: scan.ComprehensionRate,
		DifficultyLevel:   scan.DifficultyLevel,
	}
	if knownJSON.Valid {
		if err := json.Unmarshal([]byte(knownJSON.String), &result.Known); err != nil {
			return nil, fmt.Errorf("decode known words: %w", err)
		}
	}
	if unknownJSON.Valid {
		if err := json.Unmarshal([]byte(unknownJSON.String), &result.Unknown); err != nil {
			return nil, fmt.Errorf("decode unknown words: %w", err)
		}
	}
	if ignoredJSON.Valid {
		if err := json.Unmarshal([]byte(ignoredJSON.String), &result.Ignored); err != nil {
			return nil, fmt.Errorf("decode ignored words: %w", err)
		}
	}
	if starsJSON.Valid {
		if err := json.Unmarshal([]byte(starsJSON.String), &result.Stars); err != nil {
			return nil, fmt.Errorf("decode star stats: %w", err)
		}
	}
	result.KnownOccurrences = vocab.TotalOccurrences(result.Known)
	result.UnknownOccurrences = vocab.TotalOccurrences(result.Unknown)
	result.IgnoredOccurrences = vocab.TotalOccurrences(result.Ignored)
	scan.Result = result
	return &scan, nil
}

// History returns the most recent scans as summaries, newest first.
// The word lists are left out; use ScanByID for the full record.
func (s *Store) History(limit int) ([]Scan, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, text_hash, filename, text_length, created_at,
			comprehension_rate, difficulty_level,
			total_words, unique_words, known_count, unknown_count, ignored_count
		FROM scan_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// ScansByFilename returns all scans of a given file, newest first.
func (s *Store) ScansByFilename(filename string) ([]Scan, error) {
	rows, err := s.db.Query(`
		SELECT id, text_hash, filename, text_length, created_at,
			comprehension_rate, difficulty_level,
			total_words, unique_words, known_count, unknown_count, ignored_count
		FROM scan_history
		WHERE filename = ?
		ORDER BY created_at DESC, id DESC`, filename)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()
	return collectSummaries(rows)
}

// DeleteScan removes a stored scan.
func (s *Store) DeleteScan(id int64) error {
	res, err := s.db.Exec(`DELETE FROM scan_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scan %d not found", id)
	}
	return nil
}

func collectSummaries(rows *sql.Rows) ([]Scan, error) {
	scans := []Scan{}
	for rows.Next() {
		var scan Scan
		var createdAt string
		err := rows.Scan(
			&scan.ID, &scan.TextHash, &scan.Filename, &scan.TextLength, &createdAt,
			&scan.ComprehensionRate, &scan.DifficultyLevel,
			&scan.TotalWords, &scan.UniqueWords,
			&scan.KnownCount, &scan.UnknownCount, &scan.IgnoredCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scan.CreatedAt = parseTimestamp(createdAt)
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
