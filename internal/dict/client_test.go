package dict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestTokenizeChunkNestedShape(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokenize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["scanLength"].(float64) != 50 {
			t.Errorf("expected scanLength 50, got %v", req["scanLength"])
		}
		// Parsing options for one unit must be rejoined: 熱 + い = 熱い.
		w.Write([]byte(`[{"content":[[{"text":"熱"},{"text":"い"}],[{"text":"お"}],[{"text":"茶"}]]}]`))
	}))
	defer srv.Close()

	tokens, err := client.TokenizeChunk(context.Background(), "熱いお茶", 50)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []string{"熱い", "お", "茶"}
	if !reflect.DeepEqual(tokens, want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
}

func TestTokenizeChunkLegacyShape(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[["猫", 123], "犬"]`))
	}))
	defer srv.Close()

	tokens, err := client.TokenizeChunk(context.Background(), "猫犬", 50)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []string{"猫", "犬"}
	if !reflect.DeepEqual(tokens, want) {
		t.Fatalf("got %v, want %v", tokens, want)
	}
}

func TestTokenizeChunkErrors(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	if _, err := client.TokenizeChunk(context.Background(), "猫", 50); err == nil {
		t.Fatal("expected error on non-200 status")
	}

	badJSON, srv2 := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv2.Close()
	if _, err := badJSON.TokenizeChunk(context.Background(), "猫", 50); err == nil {
		t.Fatal("expected error on malformed response")
	}

	srv3 := httptest.NewServer(http.NotFoundHandler())
	down := NewClient(srv3.URL, time.Second)
	srv3.Close()
	if _, err := down.TokenizeChunk(context.Background(), "猫", 50); err == nil {
		t.Fatal("expected error when server is unreachable")
	}
}

func TestFrequencyExactMatchOnly(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/termEntries" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// 猫科 is more frequent but its headword does not match; its rank
		// must not leak into the result for 猫.
		w.Write([]byte(`{"dictionaryEntries":[
			{"headwords":[{"term":"猫","reading":"ねこ"}],"frequencies":[{"frequency":500,"dictionary":"X"}]},
			{"headwords":[{"term":"猫科"}],"frequencies":[{"frequency":10,"dictionary":"Y"}]}
		]}`))
	}))
	defer srv.Close()

	rec := client.Frequency(context.Background(), "猫")
	if !rec.Found || rec.Rank != 500 || rec.Source != "X" {
		t.Fatalf("got %+v, want rank 500 from X", rec)
	}
}

func TestFrequencyMatchesReadingAndPicksLowestRank(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dictionaryEntries":[
			{"headwords":[{"term":"御茶","reading":"おちゃ"}],"frequencies":[{"frequency":900,"dictionary":"A"},{"frequency":650,"dictionary":"B"}]}
		]}`))
	}))
	defer srv.Close()

	rec := client.Frequency(context.Background(), "おちゃ")
	if !rec.Found || rec.Rank != 650 || rec.Source != "B" {
		t.Fatalf("got %+v, want lowest rank 650 from B", rec)
	}
}

func TestFrequencyCachesPositiveResultsOnly(t *testing.T) {
	var hits atomic.Int64
	var payload atomic.Value
	payload.Store(`{"dictionaryEntries":[]}`)

	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(payload.Load().(string)))
	}))
	defer srv.Close()

	ctx := context.Background()
	if rec := client.Frequency(ctx, "珈琲"); rec.Found {
		t.Fatalf("expected miss, got %+v", rec)
	}

	// A negative result must not be cached: a later successful lookup
	// still goes to the server.
	payload.Store(`{"dictionaryEntries":[{"headwords":[{"term":"珈琲"}],"frequencies":[{"frequency":4200,"dictionary":"Z"}]}]}`)
	if rec := client.Frequency(ctx, "珈琲"); !rec.Found || rec.Rank != 4200 {
		t.Fatalf("expected rank 4200, got %+v", rec)
	}

	// Now it is cached.
	client.Frequency(ctx, "珈琲")
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 server hits, got %d", got)
	}
	if client.CachedFrequencies() != 1 {
		t.Fatalf("expected 1 cached record, got %d", client.CachedFrequencies())
	}
}

func TestFrequencyTransportFailureIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(srv.URL, time.Second)
	srv.Close()

	if rec := client.Frequency(context.Background(), "猫"); rec.Found {
		t.Fatalf("expected not-found on transport failure, got %+v", rec)
	}
}

func TestHealth(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	if st := client.Health(context.Background()); !st.Healthy {
		t.Fatalf("404 from a live server should be healthy, got %+v", st)
	}

	bad, srv2 := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv2.Close()
	if st := bad.Health(context.Background()); st.Healthy {
		t.Fatalf("502 should be unhealthy, got %+v", st)
	}

	srv3 := httptest.NewServer(http.NotFoundHandler())
	down := NewClient(srv3.URL, time.Second)
	srv3.Close()
	if st := down.Health(context.Background()); st.Healthy {
		t.Fatalf("unreachable server should be unhealthy, got %+v", st)
	}
}
