// ABOUTME: Local feature-hashing embedder that needs no network or model files
// ABOUTME: Hashes lower-cased word unigrams and bigrams into signed buckets
package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

const bigramWeight = 0.5

// LocalEmbedder is a deterministic bag-of-words embedder
type LocalEmbedder struct {
	model string
	dim   int
}

// NewLocalEmbedder creates a feature-hashing embedder with the given dimension
func NewLocalEmbedder(model string, dimension int) (*LocalEmbedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}
	if model == "" {
		model = "feature-hash-v1"
	}
	return &LocalEmbedder{model: model, dim: dimension}, nil
}

// Embed returns one L2-normalized vector per text. Texts with no words map to
// the zero vector.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *LocalEmbedder) vector(text string) []float32 {
	vec := make([]float32, e.dim)
	words := tokenize(text)

	for i, w := range words {
		e.add(vec, w, 1)
		if i > 0 {
			e.add(vec, words[i-1]+" "+w, bigramWeight)
		}
	}

	l2normalize(vec)
	return vec
}

// add hashes feature into a bucket; the top bit of the hash picks the sign
func (e *LocalEmbedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	idx := int(sum % uint64(e.dim))
	if sum>>63 == 1 {
		vec[idx] -= weight
	} else {
		vec[idx] += weight
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}

// Dimension returns the embedding dimension
func (e *LocalEmbedder) Dimension() int {
	return e.dim
}

// ModelInfo returns model information
func (e *LocalEmbedder) ModelInfo() string {
	return fmt.Sprintf("local-%s-%d", e.model, e.dim)
}
