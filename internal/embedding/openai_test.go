// ABOUTME: Tests for the OpenAI embedder against a local HTTP test server
// ABOUTME: Covers ordering by index, normalization, retries, and provider selection
package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/ragveda/internal/config"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// embeddingsServer answers each input with [len(input), 0] in reverse index order
func embeddingsServer(t *testing.T, failFirst int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		if n <= failFirst {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"temporary","type":"server_error"}}`))
			return
		}

		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}

		data := make([]map[string]any, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(len(req.Input[i])), 0},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestNewOpenAIEmbedder_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder(OpenAIConfig{}); err == nil {
		t.Error("expected error without API key")
	}
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	srv, _ := embeddingsServer(t, 0)

	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() error = %v", err)
	}

	vecs, err := e.Embed(context.Background(), []string{"a", "bbb"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("len(vecs) = %d, want 2", len(vecs))
	}
	for i, v := range vecs {
		if math.Abs(float64(v[0])-1) > 1e-6 || v[1] != 0 {
			t.Errorf("vecs[%d] = %v, want normalized [1 0]", i, v)
		}
	}
	if e.Dimension() != 1536 {
		t.Errorf("Dimension() = %d, want 1536", e.Dimension())
	}
	if e.ModelInfo() != "openai-text-embedding-3-small" {
		t.Errorf("ModelInfo() = %s", e.ModelInfo())
	}
}

func TestOpenAIEmbedder_RetriesTransientFailures(t *testing.T) {
	srv, calls := embeddingsServer(t, 2)

	e, _ := NewOpenAIEmbedder(OpenAIConfig{
		APIKey:     "test",
		BaseURL:    srv.URL,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})

	if _, err := EmbedOne(context.Background(), e, "dharma"); err != nil {
		t.Fatalf("EmbedOne() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestOpenAIEmbedder_GivesUp(t *testing.T) {
	srv, calls := embeddingsServer(t, 100)

	e, _ := NewOpenAIEmbedder(OpenAIConfig{
		APIKey:     "test",
		BaseURL:    srv.URL,
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})

	if _, err := e.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.EmbeddingModel = config.DefaultLocalEmbeddingModel

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New(local) error = %v", err)
	}
	if _, ok := e.(*LocalEmbedder); !ok {
		t.Errorf("New(local) = %T, want *LocalEmbedder", e)
	}

	cfg.EmbeddingProvider = config.ProviderOpenAI
	cfg.OpenAIKey = "test"
	e, err = New(cfg)
	if err != nil {
		t.Fatalf("New(openai) error = %v", err)
	}
	if _, ok := e.(*OpenAIEmbedder); !ok {
		t.Errorf("New(openai) = %T, want *OpenAIEmbedder", e)
	}

	cfg.EmbeddingProvider = "word2vec"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}
