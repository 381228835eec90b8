// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies defaults, YAML overlay, environment parsing, and validation
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"RAGVEDA_DATA_FILE", "PORT", "RAGVEDA_FRONTEND_DIR", "RAGVEDA_CORS_ORIGINS",
	"RAGVEDA_INDEX_PATH", "RAGVEDA_COLLECTION", "RAGVEDA_CHUNK_SIZE", "RAGVEDA_CHUNK_OVERLAP",
	"RAGVEDA_CONTEXT_LIMIT", "RAGVEDA_EMBEDDING_PROVIDER", "RAGVEDA_EMBEDDING_MODEL",
	"RAGVEDA_EMBEDDING_DIM", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MAX_RETRIES",
	"OPENAI_RETRY_DELAY", "GEMINI_PROJECT_ID", "GEMINI_LOCATION", "GEMINI_MODEL_ID",
	"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MAX_OUTPUT_TOKENS", "GEMINI_TEMPERATURE",
	"GEMINI_TIMEOUT",
}

// clearEnv blanks every key the config reads; empty values fall back to defaults
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DataFile != "data/gita.txt" {
		t.Errorf("DataFile = %s, want data/gita.txt", cfg.DataFile)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.IndexPath != ":memory:" {
		t.Errorf("IndexPath = %s, want :memory:", cfg.IndexPath)
	}
	if cfg.CollectionName != "indian_philosophy" {
		t.Errorf("CollectionName = %s, want indian_philosophy", cfg.CollectionName)
	}
	if cfg.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d, want 500", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want 50", cfg.ChunkOverlap)
	}
	if cfg.DefaultContextLimit != 3 {
		t.Errorf("DefaultContextLimit = %d, want 3", cfg.DefaultContextLimit)
	}
	if cfg.EmbeddingProvider != ProviderLocal {
		t.Errorf("EmbeddingProvider = %s, want local", cfg.EmbeddingProvider)
	}
	if cfg.EmbeddingModel != DefaultLocalEmbeddingModel {
		t.Errorf("EmbeddingModel = %s, want %s", cfg.EmbeddingModel, DefaultLocalEmbeddingModel)
	}
	if cfg.EmbeddingDimension != 384 {
		t.Errorf("EmbeddingDimension = %d, want 384", cfg.EmbeddingDimension)
	}
	if DefaultLocalEmbeddingModel != "feature-hash-v1" {
		t.Errorf("DefaultLocalEmbeddingModel = %s, want feature-hash-v1", DefaultLocalEmbeddingModel)
	}
	if cfg.GeminiMaxOutputTokens != 512 {
		t.Errorf("GeminiMaxOutputTokens = %d, want 512", cfg.GeminiMaxOutputTokens)
	}
	if cfg.GeminiTimeout != 30*time.Second {
		t.Errorf("GeminiTimeout = %v, want 30s", cfg.GeminiTimeout)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 localhost origins", cfg.AllowedOrigins)
	}
	if cfg.GenerationEnabled() {
		t.Error("GenerationEnabled() = true without GEMINI_PROJECT_ID, want false")
	}
	if cfg.Addr() != ":8000" {
		t.Errorf("Addr() = %s, want :8000", cfg.Addr())
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAGVEDA_DATA_FILE", "/srv/corpus.txt")
	t.Setenv("PORT", "9090")
	t.Setenv("RAGVEDA_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RAGVEDA_CHUNK_SIZE", "800")
	t.Setenv("RAGVEDA_CHUNK_OVERLAP", "100")
	t.Setenv("RAGVEDA_CONTEXT_LIMIT", "5")
	t.Setenv("RAGVEDA_EMBEDDING_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_RETRY_DELAY", "500ms")
	t.Setenv("GEMINI_PROJECT_ID", "my-project")
	t.Setenv("GEMINI_TEMPERATURE", "0.7")
	t.Setenv("GEMINI_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DataFile != "/srv/corpus.txt" {
		t.Errorf("DataFile = %s, want /srv/corpus.txt", cfg.DataFile)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.ChunkSize != 800 || cfg.ChunkOverlap != 100 {
		t.Errorf("chunking = %d/%d, want 800/100", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.DefaultContextLimit != 5 {
		t.Errorf("DefaultContextLimit = %d, want 5", cfg.DefaultContextLimit)
	}
	if cfg.EmbeddingProvider != ProviderOpenAI {
		t.Errorf("EmbeddingProvider = %s, want openai", cfg.EmbeddingProvider)
	}
	if cfg.EmbeddingModel != DefaultOpenAIEmbeddingModel {
		t.Errorf("EmbeddingModel = %s, want %s", cfg.EmbeddingModel, DefaultOpenAIEmbeddingModel)
	}
	if cfg.RetryDelay != 500*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 500ms", cfg.RetryDelay)
	}
	if !cfg.GenerationEnabled() {
		t.Error("GenerationEnabled() = false with GEMINI_PROJECT_ID set")
	}
	if cfg.GeminiTemperature != 0.7 {
		t.Errorf("GeminiTemperature = %f, want 0.7", cfg.GeminiTemperature)
	}
	if cfg.GeminiTimeout != 5*time.Second {
		t.Errorf("GeminiTimeout = %v, want 5s", cfg.GeminiTimeout)
	}
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAGVEDA_CHUNK_SIZE", "lots")
	t.Setenv("GEMINI_TIMEOUT", "forever")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d, want default 500", cfg.ChunkSize)
	}
	if cfg.GeminiTimeout != 30*time.Second {
		t.Errorf("GeminiTimeout = %v, want default 30s", cfg.GeminiTimeout)
	}
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ragveda.yaml")
	content := `data_file: texts/upanishads.txt
collection_name: upanishads
chunk_size: 300
chunk_overlap: 30
gemini_timeout: 10s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RAGVEDA_CHUNK_SIZE", "400")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() failed: %v", err)
	}
	if cfg.DataFile != "texts/upanishads.txt" {
		t.Errorf("DataFile = %s, want texts/upanishads.txt", cfg.DataFile)
	}
	if cfg.CollectionName != "upanishads" {
		t.Errorf("CollectionName = %s, want upanishads", cfg.CollectionName)
	}
	if cfg.ChunkSize != 400 {
		t.Errorf("ChunkSize = %d, want env override 400", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 30 {
		t.Errorf("ChunkOverlap = %d, want 30", cfg.ChunkOverlap)
	}
	if cfg.GeminiTimeout != 10*time.Second {
		t.Errorf("GeminiTimeout = %v, want 10s", cfg.GeminiTimeout)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want default 8000", cfg.Port)
	}
}

func TestLoadWithFile_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("chunk_size: [1, 2"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadWithFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, "RAGVEDA_CHUNK_SIZE"},
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, "RAGVEDA_CHUNK_OVERLAP"},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, "RAGVEDA_CHUNK_OVERLAP"},
		{"zero context limit", func(c *Config) { c.DefaultContextLimit = 0 }, "RAGVEDA_CONTEXT_LIMIT"},
		{"unknown provider", func(c *Config) { c.EmbeddingProvider = "bert" }, "RAGVEDA_EMBEDDING_PROVIDER"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }, "OPENAI_MAX_RETRIES"},
		{"temperature out of range", func(c *Config) { c.GeminiTemperature = 3 }, "GEMINI_TEMPERATURE"},
		{"zero max tokens", func(c *Config) { c.GeminiMaxOutputTokens = 0 }, "GEMINI_MAX_OUTPUT_TOKENS"},
		{"empty collection", func(c *Config) { c.CollectionName = "" }, "RAGVEDA_COLLECTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
