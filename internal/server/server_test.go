package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lrvideckis/keygen/pkg/pipeline"
	"github.com/lrvideckis/keygen/pkg/store"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	setup, err := pipeline.LoadSetup("")
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(nil, nil, nil)
	return New(runner, setup, st, nil), st
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestScoreEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body, _ := json.Marshal(scoreRequest{Corpus: "hello world", Detailed: true})
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/score", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp scoreResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total <= 0 {
		t.Errorf("total = %f, want > 0", resp.Total)
	}
	if resp.CorpusLen != len("hello world") {
		t.Errorf("corpus_len = %d, want %d", resp.CorpusLen, len("hello world"))
	}
	if len(resp.Breakdown) == 0 {
		t.Error("detailed score should include a breakdown")
	}
}

func TestScoreEndpointRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed JSON", "{"},
		{"missing corpus", `{}`},
		{"bad layout", `{"corpus":"abc","layout":"too short"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/score", bytes.NewReader([]byte(tc.body))))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestResultsEndpoints(t *testing.T) {
	srv, st := newTestServer(t)
	ctx := context.Background()

	// Empty store lists an empty array.
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var recs []store.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("empty store listed %d records", len(recs))
	}

	// Save one and fetch it back through the API.
	rec := store.NewRecord("layout-text", "hash", "anneal", 50, 0.5)
	if err := st.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/results/"+rec.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var got store.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != rec.ID || got.Layout != rec.Layout {
		t.Errorf("fetched %+v, want %+v", got, rec)
	}
}

func TestResultsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/results/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestResultsLimitValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/results?limit=zero", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
