// ABOUTME: Tests for the HTTP API using httptest
// ABOUTME: Covers status mapping, frontend serving, CORS, request ids, and an end-to-end ask
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/ragveda/internal/core"
	"github.com/harper/ragveda/internal/embedding"
	"github.com/harper/ragveda/internal/models"
	"github.com/harper/ragveda/internal/storage/sqlite"
)

type fakeEngine struct {
	health    models.Health
	stats     models.Stats
	statsErr  error
	answer    *models.Answer
	askErr    error
	gotLimit  *int
	gotQuestion string
}

func (f *fakeEngine) Ask(_ context.Context, question string, limit *int) (*models.Answer, error) {
	f.gotQuestion = question
	f.gotLimit = limit
	return f.answer, f.askErr
}

func (f *fakeEngine) Health() models.Health { return f.health }

func (f *fakeEngine) Stats(context.Context) (models.Stats, error) { return f.stats, f.statsErr }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body is not JSON: %q", rec.Body.String())
	}
	return e.Detail
}

func TestHealth(t *testing.T) {
	eng := &fakeEngine{health: models.Health{Status: models.HealthHealthy, Ready: true, Message: "RAG engine is ready"}}
	rec := do(t, New(eng, Options{}).Handler(), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var h models.Health
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h != eng.health {
		t.Errorf("health = %+v, want %+v", h, eng.health)
	}
}

func TestStats(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		eng := &fakeEngine{stats: models.Stats{Ready: true, Count: 42, CollectionName: "indian_philosophy", DataFile: "data/gita.txt"}}
		rec := do(t, New(eng, Options{}).Handler(), http.MethodGet, "/stats", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var got map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &got)
		if got["count"] != float64(42) || got["collection_name"] != "indian_philosophy" || got["ready"] != true {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		eng := &fakeEngine{statsErr: core.ErrNotReady}
		rec := do(t, New(eng, Options{}).Handler(), http.MethodGet, "/stats", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if d := detail(t, rec); d != detailNotReady {
			t.Errorf("detail = %q", d)
		}
	})
}

func TestAsk_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		askErr     error
		wantStatus int
		wantDetail string
	}{
		{"not ready", `{"question":"q"}`, core.ErrNotReady, http.StatusServiceUnavailable, detailAskNotReady},
		{"invalid limit", `{"question":"q","context_limit":0}`, core.ErrInvalidContextLimit, http.StatusBadRequest, core.ErrInvalidContextLimit.Error()},
		{"empty question", `{"question":""}`, core.ErrEmptyQuestion, http.StatusBadRequest, core.ErrEmptyQuestion.Error()},
		{"malformed body", `{"question":`, nil, http.StatusBadRequest, "Invalid request body"},
		{"wrong type", `{"question":"q","context_limit":"three"}`, nil, http.StatusBadRequest, "Invalid request body"},
		{"internal failure", `{"question":"q"}`, errors.New("disk on fire"), http.StatusInternalServerError, "Error processing question: disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{askErr: tt.askErr}
			rec := do(t, New(eng, Options{}).Handler(), http.MethodPost, "/ask", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if d := detail(t, rec); !strings.HasPrefix(d, tt.wantDetail) {
				t.Errorf("detail = %q, want prefix %q", d, tt.wantDetail)
			}
		})
	}
}

func TestAsk_PassesLimitThrough(t *testing.T) {
	eng := &fakeEngine{answer: &models.Answer{Answer: "a", Sources: []string{"s"}, Question: "q"}}
	h := New(eng, Options{}).Handler()

	rec := do(t, h, http.MethodPost, "/ask", `{"question":"q","context_limit":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if eng.gotLimit == nil || *eng.gotLimit != 5 {
		t.Errorf("limit = %v, want 5", eng.gotLimit)
	}

	do(t, h, http.MethodPost, "/ask", `{"question":"q"}`)
	if eng.gotLimit != nil {
		t.Errorf("limit = %v, want nil when omitted", *eng.gotLimit)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, New(&fakeEngine{}, Options{}).Handler(), http.MethodGet, "/ask", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /ask status = %d, want 405", rec.Code)
	}
}

func TestFrontend(t *testing.T) {
	t.Run("missing build", func(t *testing.T) {
		s := New(&fakeEngine{}, Options{FrontendDir: filepath.Join(t.TempDir(), "dist")})
		rec := do(t, s.Handler(), http.MethodGet, "/", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if d := detail(t, rec); d != detailFrontendBuild {
			t.Errorf("detail = %q", d)
		}
	})

	t.Run("empty build dir", func(t *testing.T) {
		s := New(&fakeEngine{}, Options{FrontendDir: t.TempDir()})
		if rec := do(t, s.Handler(), http.MethodGet, "/", ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("built", func(t *testing.T) {
		dist := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dist, "assets"), 0o755); err != nil {
			t.Fatal(err)
		}
		_ = os.WriteFile(filepath.Join(dist, "index.html"), []byte("<html>ragveda</html>"), 0o644)
		_ = os.WriteFile(filepath.Join(dist, "assets", "app.js"), []byte("console.log(1)"), 0o644)

		h := New(&fakeEngine{}, Options{FrontendDir: dist}).Handler()

		rec := do(t, h, http.MethodGet, "/", "")
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ragveda") {
			t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
		}

		rec = do(t, h, http.MethodGet, "/assets/app.js", "")
		if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
			t.Errorf("GET /assets/app.js = %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestCORS(t *testing.T) {
	h := New(&fakeEngine{}, Options{AllowedOrigins: []string{"http://localhost:5173"}}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q for allowed origin", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q for disallowed origin", got)
	}
}

func TestRequestID(t *testing.T) {
	h := New(&fakeEngine{}, Options{}).Handler()

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want echoed abc-123", got)
	}
}

func TestEndToEnd(t *testing.T) {
	corpus := strings.Join([]string{
		"Arjuna sees his kinsmen arrayed for battle and lays down his bow.",
		"Krishna teaches that the self is eternal and cannot be slain.",
		"Perform your prescribed duty without attachment to the fruits of action.",
		"The yogi who sees the same self in all beings attains peace.",
	}, "\n")
	path := filepath.Join(t.TempDir(), "gita.txt")
	if err := os.WriteFile(path, []byte(corpus), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	coll, err := db.GetOrCreateCollection(context.Background(), "indian_philosophy")
	if err != nil {
		t.Fatal(err)
	}
	emb, _ := embedding.NewLocalEmbedder("feature-hash-v1", 384)

	eng := core.NewEngine(emb, coll, nil, core.Options{DataFile: path, ChunkSize: 80, Overlap: 0})
	h := New(eng, Options{}).Handler()

	if rec := do(t, h, http.MethodPost, "/ask", `{"question":"What is duty?"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ask before init = %d, want 503", rec.Code)
	}

	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	rec := do(t, h, http.MethodPost, "/ask", `{"question":"duty without attachment to the fruits","context_limit":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask = %d %s", rec.Code, rec.Body.String())
	}
	var ans models.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ans.Sources) != 1 || !strings.Contains(ans.Sources[0], "prescribed duty") {
		t.Errorf("sources = %q, want the duty verse", ans.Sources)
	}
	if ans.Question != "duty without attachment to the fruits" {
		t.Errorf("question = %q", ans.Question)
	}

	rec = do(t, h, http.MethodGet, "/stats", "")
	var stats models.Stats
	_ = json.Unmarshal(rec.Body.Bytes(), &stats)
	if !stats.Ready || stats.Count != 4 {
		t.Errorf("stats = %+v, want 4 ready entries", stats)
	}
}

type failingGenerator struct{ calls int }

func (g *failingGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	return "", errors.New("backend unavailable")
}

func TestEndToEnd_GeneratorFailureFallsBack(t *testing.T) {
	long := "Perform your prescribed duty without attachment to the fruits of action, " +
		"for one who acts without attachment attains the Supreme."
	path := filepath.Join(t.TempDir(), "gita.txt")
	if err := os.WriteFile(path, []byte(long+"\nArjuna lays down his bow."), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()
	coll, err := db.GetOrCreateCollection(context.Background(), "indian_philosophy")
	if err != nil {
		t.Fatal(err)
	}
	emb, _ := embedding.NewLocalEmbedder("feature-hash-v1", 384)

	gen := &failingGenerator{}
	eng := core.NewEngine(emb, coll, core.NewAssembler(gen, 0), core.Options{DataFile: path, ChunkSize: 80, Overlap: 0})
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	h := New(eng, Options{}).Handler()

	rec := do(t, h, http.MethodPost, "/ask", `{"question":"duty without attachment","context_limit":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask = %d %s, want 200", rec.Code, rec.Body.String())
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}

	var ans models.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(ans.Answer, "Based on the Bhagavad Gita") || !strings.Contains(ans.Answer, long) {
		t.Errorf("answer = %q, want extractive answer with the full passage", ans.Answer)
	}
	if len(ans.Sources) != 1 {
		t.Fatalf("sources = %q, want 1", ans.Sources)
	}
	if want := models.TruncateSource(long); ans.Sources[0] != want || !strings.HasSuffix(want, "...") {
		t.Errorf("source = %q, want %q", ans.Sources[0], want)
	}
}
