// ABOUTME: Embedding and search result models for the vector index
// ABOUTME: Vectors are float32 to match the embedding APIs
package models

import "fmt"

// Embedding is a stored vector for one chunk
type Embedding struct {
	ChunkID string    `json:"chunk_id"`
	Vector  []float32 `json:"vector"`
}

// ValidateDimension checks the vector is non-empty and has the expected length
func (e *Embedding) ValidateDimension(expected int) error {
	if len(e.Vector) == 0 {
		return fmt.Errorf("embedding for %s cannot be empty", e.ChunkID)
	}
	if len(e.Vector) != expected {
		return fmt.Errorf("embedding for %s has dimension %d, expected %d", e.ChunkID, len(e.Vector), expected)
	}
	return nil
}

// SearchResult is one ranked hit from a collection query
type SearchResult struct {
	ID         string  `json:"id"`
	Document   string  `json:"document"`
	Similarity float64 `json:"similarity"`
}
