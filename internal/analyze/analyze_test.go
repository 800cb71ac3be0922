package analyze

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"novel_lens/internal/dict"
)

func set(words ...string) map[string]struct{} {
	s := map[string]struct{}{}
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func TestRunEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokenize":
			w.Write([]byte(`[{"content":[[{"text":"猫"}],[{"text":"犬"}],[{"text":"猫"}]]}]`))
		case "/termEntries":
			w.Write([]byte(`{"dictionaryEntries":[{"headwords":[{"term":"猫"}],"frequencies":[{"frequency":500,"dictionary":"X"}]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	analyzer := &Analyzer{Dict: dict.NewClient(srv.URL, 5*time.Second), Workers: 1}
	tracker := NewTracker()
	result, err := analyzer.Run(context.Background(), "猫犬猫", set("猫"), set("犬"), tracker.Observe("run-1"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.TotalWords != 3 || result.UniqueWords != 2 {
		t.Fatalf("totals wrong: %+v", result)
	}
	if len(result.Known) != 1 || result.Known[0].Word != "猫" || result.Known[0].Count != 2 {
		t.Fatalf("known list wrong: %+v", result.Known)
	}
	if !result.Known[0].HasFrequency || result.Known[0].Rank != 500 || result.Known[0].Source != "X" {
		t.Fatalf("frequency fields wrong: %+v", result.Known[0])
	}
	if len(result.Ignored) != 1 || result.Ignored[0].Word != "犬" {
		t.Fatalf("ignored list wrong: %+v", result.Ignored)
	}
	if len(result.Unknown) != 0 {
		t.Fatalf("expected no unknown words, got %+v", result.Unknown)
	}

	// Partition invariant: the category lists cover every unique word.
	if len(result.Known)+len(result.Unknown)+len(result.Ignored) != result.UniqueWords {
		t.Fatal("classification partition violated")
	}

	// Ignored occurrences are excluded from comprehension entirely.
	if result.ComprehensionRate != 100.0 {
		t.Fatalf("comprehension = %v, want 100", result.ComprehensionRate)
	}
	if result.DifficultyLevel != "Beginner" {
		t.Fatalf("difficulty = %q, want Beginner", result.DifficultyLevel)
	}
	if result.Stars.Known.StarCounts[5] != 1 {
		t.Fatalf("expected one 5-star known word, got %v", result.Stars.Known.StarCounts)
	}

	final, ok := tracker.Latest("run-1")
	if !ok || final.Stage != StageComplete || final.Progress != 100 {
		t.Fatalf("terminal state not retained: %+v", final)
	}
}

func TestRunDegradesToFallbackWhenServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := dict.NewClient(srv.URL, time.Second)
	srv.Close()

	analyzer := &Analyzer{Dict: client, Workers: 1}
	stages := []Stage{}
	result, err := analyzer.Run(context.Background(), "熱いお茶を飲みました。", set(), set(), func(u Update) {
		stages = append(stages, u.Stage)
	})
	if err != nil {
		t.Fatalf("run should survive a dead dictionary server: %v", err)
	}
	if result.TotalWords == 0 {
		t.Fatal("fallback tokenization yielded no usable tokens")
	}
	if result.Known == nil || result.Unknown == nil {
		t.Fatal("result lists not populated")
	}
	if stages[len(stages)-1] != StageComplete {
		t.Fatalf("expected complete stage, got %v", stages[len(stages)-1])
	}
	for _, s := range stages {
		if s == StageError {
			t.Fatal("degraded run must not emit an error stage")
		}
	}
}

func TestRunStageOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tokenize":
			w.Write([]byte(`[{"content":[[{"text":"図書館"}]]}]`))
		default:
			w.Write([]byte(`{"dictionaryEntries":[]}`))
		}
	}))
	defer srv.Close()

	analyzer := &Analyzer{Dict: dict.NewClient(srv.URL, 5*time.Second), Workers: 1}
	stages := []Stage{}
	if _, err := analyzer.Run(context.Background(), "図書館", set(), set(), func(u Update) {
		stages = append(stages, u.Stage)
	}); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []Stage{StageStarting, StagePreprocessing, StageTokenizing, StageTokenizing, StageFiltering, StageVocabularyLookup, StageComplete}
	if len(stages) != len(want) {
		t.Fatalf("stages %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stage %d = %v, want %v (all: %v)", i, stages[i], want[i], stages)
		}
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	analyzer := &Analyzer{Dict: dict.NewClient("http://127.0.0.1:1", time.Second), Workers: 1}
	tracker := NewTracker()
	if _, err := analyzer.Run(context.Background(), "  <p></p>  ", set(), set(), tracker.Observe("r")); err == nil {
		t.Fatal("expected error for blank input")
	}
	if u, ok := tracker.Latest("r"); !ok || u.Stage != StageError {
		t.Fatalf("expected error stage retained, got %+v", u)
	}
}

func TestTrackerLastWriteWinsAndForget(t *testing.T) {
	tracker := NewTracker()
	on := tracker.Observe("x")
	on(Update{Stage: StageStarting, Progress: 0})
	on(Update{Stage: StageComplete, Progress: 100})

	u, ok := tracker.Latest("x")
	if !ok || !u.Done() {
		t.Fatalf("expected terminal update, got %+v", u)
	}

	tracker.Forget("x")
	if _, ok := tracker.Latest("x"); ok {
		t.Fatal("expected run to be forgotten")
	}
}
