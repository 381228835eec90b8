// ABOUTME: Engine owns the corpus index lifecycle and answers questions against it
// ABOUTME: Ingestion runs once per corpus fingerprint; asks are gated on readiness
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/harper/ragveda/internal/embedding"
	"github.com/harper/ragveda/internal/models"
)

var (
	// ErrNotReady is returned when the index is not available for queries
	ErrNotReady = errors.New("RAG engine not ready")
	// ErrInvalidContextLimit is returned for a non-positive context limit
	ErrInvalidContextLimit = errors.New("context_limit must be a positive integer")
	// ErrEmptyQuestion is returned when the question is blank
	ErrEmptyQuestion = errors.New("question must not be empty")
	// ErrCorpusNotFound is returned when the corpus file does not exist
	ErrCorpusNotFound = errors.New("corpus file not found")
	// ErrEmptyCorpus is returned when the corpus yields no chunks
	ErrEmptyCorpus = errors.New("corpus produced no chunks")
	// ErrInitializing is returned when Initialize is already running
	ErrInitializing = errors.New("initialization already in progress")
)

// DefaultBatchSize is the number of chunks embedded and inserted per batch
const DefaultBatchSize = 50

// State is the engine lifecycle state
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateNotReady      State = "not_ready"
)

// Embedder turns texts into vectors
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelInfo() string
}

// Collection is the vector index the engine ingests into and queries
type Collection interface {
	Name() string
	Count(ctx context.Context) (int, error)
	Add(ctx context.Context, embeddings [][]float32, documents []string, ids []string) error
	Query(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error)
	Fingerprint(ctx context.Context) (string, error)
	SetFingerprint(ctx context.Context, fingerprint string) error
	Reset(ctx context.Context) error
}

// Options configures ingestion and query defaults
type Options struct {
	DataFile            string
	ChunkSize           int
	Overlap             int
	BatchSize           int
	DefaultContextLimit int
	// Progress, if set, is called after each ingested batch
	Progress func(done, total int)
}

// Engine coordinates chunking, embedding, indexing, and answer assembly
type Engine struct {
	mu         sync.RWMutex
	state      State
	embedder   Embedder
	collection Collection
	assembler  *Assembler
	opts       Options
}

// NewEngine creates an Engine in the uninitialized state
func NewEngine(embedder Embedder, collection Collection, assembler *Assembler, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.DefaultContextLimit <= 0 {
		opts.DefaultContextLimit = 3
	}
	if assembler == nil {
		assembler = NewAssembler(nil, 0)
	}
	return &Engine{
		state:      StateUninitialized,
		embedder:   embedder,
		collection: collection,
		assembler:  assembler,
		opts:       opts,
	}
}

// Initialize loads the corpus and populates the index if needed.
// Any failure leaves the engine permanently not_ready.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateReady:
		e.mu.Unlock()
		return nil
	case StateInitializing:
		e.mu.Unlock()
		return ErrInitializing
	case StateNotReady:
		e.mu.Unlock()
		return fmt.Errorf("%w: initialization previously failed", ErrNotReady)
	}
	e.state = StateInitializing
	e.mu.Unlock()

	err := e.ingest(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state = StateNotReady
		return err
	}
	e.state = StateReady
	return nil
}

func (e *Engine) ingest(ctx context.Context) error {
	data, err := os.ReadFile(e.opts.DataFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: data file not found at %s", e.opts.DataFile)
			return fmt.Errorf("%w: %s", ErrCorpusNotFound, e.opts.DataFile)
		}
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	chunks := ChunkText(string(data), e.opts.ChunkSize, e.opts.Overlap)
	if len(chunks) == 0 {
		log.Printf("Warning: %s produced no chunks", e.opts.DataFile)
		return ErrEmptyCorpus
	}

	fingerprint := CorpusFingerprint(data, e.opts.ChunkSize, e.opts.Overlap, e.embedder.ModelInfo())

	count, err := e.collection.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count collection: %w", err)
	}

	if count > 0 {
		stored, err := e.collection.Fingerprint(ctx)
		if err != nil {
			return fmt.Errorf("failed to read collection fingerprint: %w", err)
		}
		if stored == fingerprint {
			log.Printf("Collection %s already holds %d documents, skipping ingestion", e.collection.Name(), count)
			return nil
		}
		log.Printf("Corpus changed since collection %s was built, re-indexing", e.collection.Name())
		if err := e.collection.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset collection: %w", err)
		}
	}

	log.Printf("Indexing %d chunks from %s", len(chunks), e.opts.DataFile)
	if err := e.addChunks(ctx, models.NewChunks(chunks)); err != nil {
		return err
	}
	if err := e.collection.SetFingerprint(ctx, fingerprint); err != nil {
		return fmt.Errorf("failed to store collection fingerprint: %w", err)
	}

	count, err = e.collection.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count collection: %w", err)
	}
	if count == 0 {
		return ErrEmptyCorpus
	}
	log.Printf("Successfully added %d documents to collection %s", count, e.collection.Name())
	return nil
}

func (e *Engine) addChunks(ctx context.Context, chunks []models.Chunk) error {
	total := len(chunks)
	for start := 0; start < total; start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, total)
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		ids := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
			ids[i] = c.ID
		}

		vectors, err := e.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
		}

		if err := e.collection.Add(ctx, vectors, texts, ids); err != nil {
			return fmt.Errorf("failed to add chunks %d-%d: %w", start, end-1, err)
		}

		if e.opts.Progress != nil {
			e.opts.Progress(end, total)
		}
	}
	return nil
}

// Ask answers question using up to contextLimit retrieved chunks.
// A nil contextLimit uses the configured default.
func (e *Engine) Ask(ctx context.Context, question string, contextLimit *int) (*models.Answer, error) {
	if !e.Ready() {
		return nil, ErrNotReady
	}

	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	limit := e.opts.DefaultContextLimit
	if contextLimit != nil {
		limit = *contextLimit
	}
	if limit <= 0 {
		return nil, ErrInvalidContextLimit
	}

	vector, err := embedding.EmbedOne(ctx, e.embedder, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := e.collection.Query(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	if len(results) == 0 {
		return &models.Answer{
			Answer:   NoResultsAnswer,
			Sources:  []string{},
			Question: question,
		}, nil
	}

	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Document
	}

	return &models.Answer{
		Answer:   e.assembler.Answer(ctx, question, contexts),
		Sources:  models.SourcesFrom(contexts),
		Question: question,
		Passages: results,
	}, nil
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Ready reports whether the engine can answer questions
func (e *Engine) Ready() bool {
	return e.State() == StateReady
}

// Health summarizes readiness for the health endpoint
func (e *Engine) Health() models.Health {
	switch e.State() {
	case StateReady:
		return models.Health{Status: models.HealthHealthy, Ready: true, Message: "RAG engine is ready"}
	case StateNotReady:
		return models.Health{Status: models.HealthNotReady, Ready: false, Message: "Waiting for data to be loaded"}
	default:
		return models.Health{Status: models.HealthInitializing, Ready: false, Message: "Indexing corpus"}
	}
}

// Stats reports the populated index. Returns ErrNotReady before ingestion completes.
func (e *Engine) Stats(ctx context.Context) (models.Stats, error) {
	if !e.Ready() {
		return models.Stats{Ready: false}, ErrNotReady
	}

	count, err := e.collection.Count(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to count collection: %w", err)
	}

	return models.Stats{
		Ready:          true,
		Count:          count,
		CollectionName: e.collection.Name(),
		DataFile:       e.opts.DataFile,
	}, nil
}

// CorpusFingerprint identifies one build of the index: corpus bytes, chunking
// parameters, and embedding model.
func CorpusFingerprint(data []byte, chunkSize, overlap int, model string) string {
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, "\x00chunk_size=%d\x00overlap=%d\x00model=%s", chunkSize, overlap, model)
	return hex.EncodeToString(h.Sum(nil))
}
