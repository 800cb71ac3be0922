package analyze

import "sync"

// Stage identifies where in the pipeline a run currently is.
type Stage string

const (
	StageStarting         Stage = "starting"
	StagePreprocessing    Stage = "preprocessing"
	StageChunking         Stage = "chunking"
	StageTokenizing       Stage = "tokenizing"
	StageFiltering        Stage = "filtering"
	StageVocabularyLookup Stage = "vocabulary_lookup"
	StageComplete         Stage = "complete"
	StageError            Stage = "error"
)

// Update is one progress snapshot. Only the latest update per run
// matters to consumers.
type Update struct {
	Stage           Stage  `json:"stage"`
	Message         string `json:"message"`
	Progress        int    `json:"progress"`
	TotalChunks     int    `json:"total_chunks,omitempty"`
	CompletedChunks int    `json:"completed_chunks,omitempty"`
}

// Done reports whether the update is terminal.
func (u Update) Done() bool {
	return u.Stage == StageComplete || u.Stage == StageError
}

// ProgressFn receives pipeline progress. A nil ProgressFn is allowed.
type ProgressFn func(Update)

func report(on ProgressFn, u Update) {
	if on == nil {
		return
	}
	if u.Progress < 0 {
		u.Progress = 0
	}
	if u.Progress > 100 {
		u.Progress = 100
	}
	on(u)
}

// Tracker keeps the latest update per run id, last write wins. Terminal
// states stay readable until the run is explicitly forgotten, so a
// consumer polling after completion always sees them at least once.
type Tracker struct {
	mu   sync.RWMutex
	runs map[string]Update
}

func NewTracker() *Tracker {
	return &Tracker{runs: map[string]Update{}}
}

// Observe returns a ProgressFn that records updates for runID.
func (t *Tracker) Observe(runID string) ProgressFn {
	return func(u Update) {
		t.mu.Lock()
		t.runs[runID] = u
		t.mu.Unlock()
	}
}

// Latest returns the most recent update for runID.
func (t *Tracker) Latest(runID string) (Update, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, ok := t.runs[runID]
	return u, ok
}

// Forget drops a run's state once its consumer has read the terminal
// update.
func (t *Tracker) Forget(runID string) {
	t.mu.Lock()
	delete(t.runs, runID)
	t.mu.Unlock()
}
