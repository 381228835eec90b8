// ABOUTME: Shared wiring for commands: config, index database, embedder, generator, engine
// ABOUTME: Every command that answers questions builds its engine through newApp
package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/harper/ragveda/internal/config"
	"github.com/harper/ragveda/internal/core"
	"github.com/harper/ragveda/internal/embedding"
	"github.com/harper/ragveda/internal/llm"
	"github.com/harper/ragveda/internal/storage/sqlite"
	"github.com/joho/godotenv"
)

// app holds the components a command needs
type app struct {
	cfg        *config.Config
	db         *sqlite.DB
	collection *sqlite.Collection
	embedder   embedding.Embedder
	engine     *core.Engine
}

// loadConfig loads .env, then the optional YAML file, then the environment
func loadConfig() (*config.Config, error) {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newApp opens the index and builds an uninitialized engine.
// progress may be nil.
func newApp(ctx context.Context, cfg *config.Config, progress func(done, total int)) (*app, error) {
	db, err := sqlite.OpenPath(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	collection, err := db.GetOrCreateCollection(ctx, cfg.CollectionName)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening collection: %w", err)
	}

	emb, err := embedding.New(cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}
	if verbose {
		log.Printf("Embedding model: %s (dimension %d)", emb.ModelInfo(), emb.Dimension())
	}

	assembler := core.NewAssembler(newGenerator(cfg), cfg.GeminiTimeout)
	if verbose {
		mode := "extractive"
		if assembler.HasGenerator() {
			mode = "generative"
		}
		log.Printf("Answer mode: %s", mode)
	}

	engine := core.NewEngine(emb, collection, assembler, core.Options{
		DataFile:            cfg.DataFile,
		ChunkSize:           cfg.ChunkSize,
		Overlap:             cfg.ChunkOverlap,
		BatchSize:           core.DefaultBatchSize,
		DefaultContextLimit: cfg.DefaultContextLimit,
		Progress:            progress,
	})

	return &app{
		cfg:        cfg,
		db:         db,
		collection: collection,
		embedder:   emb,
		engine:     engine,
	}, nil
}

// newGenerator returns the configured generative backend, or nil for
// extractive answers. Setup failures are logged and never fatal.
func newGenerator(cfg *config.Config) core.Generator {
	if !cfg.GenerationEnabled() {
		log.Println("Generative backend not configured; answers will be extractive")
		return nil
	}

	gen, err := llm.NewChatGenerator(llm.GeneratorConfig{
		ProjectID:       cfg.GeminiProjectID,
		Location:        cfg.GeminiLocation,
		Model:           cfg.GeminiModelID,
		APIKey:          cfg.GeminiAPIKey,
		BaseURL:         cfg.GeminiBaseURL,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
		Temperature:     cfg.GeminiTemperature,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize generative backend: %v", err)
		return nil
	}

	if verbose {
		log.Printf("Generative backend initialized with model %s", gen.Model())
	}
	return gen
}

// Close releases the index database
func (a *app) Close() error {
	return a.db.Close()
}
