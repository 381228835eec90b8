// ABOUTME: Chunk represents one overlapping, line-aligned window of the corpus
// ABOUTME: Chunk ids encode the absolute position in the corpus chunk sequence
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkIDPrefix is prepended to the absolute chunk index to form stored ids
const ChunkIDPrefix = "chunk_"

// Chunk is an immutable window of corpus text used as the unit of retrieval
type Chunk struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// ChunkID returns the stored id for the chunk at the given corpus position
func ChunkID(position int) string {
	return ChunkIDPrefix + strconv.Itoa(position)
}

// ParseChunkID returns the corpus position encoded in id
func ParseChunkID(id string) (int, error) {
	if !strings.HasPrefix(id, ChunkIDPrefix) {
		return 0, fmt.Errorf("invalid chunk id %q: missing %q prefix", id, ChunkIDPrefix)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, ChunkIDPrefix))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid chunk id %q: bad position", id)
	}
	return n, nil
}

// NewChunks wraps ordered chunk texts with sequential ids
func NewChunks(texts []string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			ID:       ChunkID(i),
			Position: i,
			Text:     text,
		}
	}
	return chunks
}
