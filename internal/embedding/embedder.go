// ABOUTME: Embedder interface and provider selection for chunk and question vectors
// ABOUTME: Supports a local feature-hashing model and OpenAI-compatible embedding APIs
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/harper/ragveda/internal/config"
)

// BatchEmbedder embeds texts in one call
type BatchEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder generates fixed-length vectors for text
type Embedder interface {
	BatchEmbedder
	Dimension() int
	ModelInfo() string
}

// EmbedOne embeds a single text
func EmbedOne(ctx context.Context, e BatchEmbedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// New returns the embedder selected by cfg.EmbeddingProvider
func New(cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderLocal, "":
		return NewLocalEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimension)
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.EmbeddingModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

// l2normalize normalizes a vector to unit length in place
func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
