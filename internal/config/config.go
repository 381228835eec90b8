// ABOUTME: Centralized configuration for the ragveda question-answering service
// ABOUTME: Loads defaults, an optional YAML overlay, then environment variables, and validates
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedding providers
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

const (
	DefaultLocalEmbeddingModel  = "feature-hash-v1"
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
)

// Config holds all configuration for the service
type Config struct {
	// Corpus and serving
	DataFile       string   `yaml:"data_file"`
	Port           int      `yaml:"port"`
	FrontendDir    string   `yaml:"frontend_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Index
	IndexPath           string `yaml:"index_path"`
	CollectionName      string `yaml:"collection_name"`
	ChunkSize           int    `yaml:"chunk_size"`
	ChunkOverlap        int    `yaml:"chunk_overlap"`
	DefaultContextLimit int    `yaml:"default_context_limit"`

	// Embeddings
	EmbeddingProvider  string        `yaml:"embedding_provider"`
	EmbeddingModel     string        `yaml:"embedding_model"`
	EmbeddingDimension int           `yaml:"embedding_dimension"`
	OpenAIKey          string        `yaml:"-"`
	OpenAIBaseURL      string        `yaml:"openai_base_url"`
	MaxRetries         int           `yaml:"max_retries"`
	RetryDelay         time.Duration `yaml:"retry_delay"`

	// Generative backend (Gemini on Vertex AI, OpenAI-compatible endpoint)
	GeminiProjectID       string        `yaml:"gemini_project_id"`
	GeminiLocation        string        `yaml:"gemini_location"`
	GeminiModelID         string        `yaml:"gemini_model_id"`
	GeminiAPIKey          string        `yaml:"-"`
	GeminiBaseURL         string        `yaml:"gemini_base_url"`
	GeminiMaxOutputTokens int           `yaml:"gemini_max_output_tokens"`
	GeminiTemperature     float64       `yaml:"gemini_temperature"`
	GeminiTimeout         time.Duration `yaml:"gemini_timeout"`
}

// Default returns the compiled-in configuration
func Default() *Config {
	return &Config{
		DataFile:              "data/gita.txt",
		Port:                  8000,
		FrontendDir:           "frontend/dist",
		AllowedOrigins:        []string{"http://localhost:3000", "http://localhost:5173"},
		IndexPath:             ":memory:",
		CollectionName:        "indian_philosophy",
		ChunkSize:             500,
		ChunkOverlap:          50,
		DefaultContextLimit:   3,
		EmbeddingProvider:     ProviderLocal,
		EmbeddingDimension:    384,
		MaxRetries:            3,
		RetryDelay:            2 * time.Second,
		GeminiLocation:        "us-central1",
		GeminiModelID:         "google/gemini-2.0-flash-001",
		GeminiMaxOutputTokens: 512,
		GeminiTemperature:     0.2,
		GeminiTimeout:         30 * time.Second,
	}
}

// Load reads configuration from environment variables on top of the defaults
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile applies the YAML file at path (if non-empty) over the defaults,
// then environment variables, then validates.
func LoadWithFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.EmbeddingModel == "" {
		if cfg.EmbeddingProvider == ProviderOpenAI {
			cfg.EmbeddingModel = DefaultOpenAIEmbeddingModel
		} else {
			cfg.EmbeddingModel = DefaultLocalEmbeddingModel
		}
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.DataFile = getEnv("RAGVEDA_DATA_FILE", c.DataFile)
	c.Port = getEnvInt("PORT", c.Port)
	c.FrontendDir = getEnv("RAGVEDA_FRONTEND_DIR", c.FrontendDir)
	c.AllowedOrigins = getEnvList("RAGVEDA_CORS_ORIGINS", c.AllowedOrigins)

	c.IndexPath = getEnv("RAGVEDA_INDEX_PATH", c.IndexPath)
	c.CollectionName = getEnv("RAGVEDA_COLLECTION", c.CollectionName)
	c.ChunkSize = getEnvInt("RAGVEDA_CHUNK_SIZE", c.ChunkSize)
	c.ChunkOverlap = getEnvInt("RAGVEDA_CHUNK_OVERLAP", c.ChunkOverlap)
	c.DefaultContextLimit = getEnvInt("RAGVEDA_CONTEXT_LIMIT", c.DefaultContextLimit)

	c.EmbeddingProvider = strings.ToLower(getEnv("RAGVEDA_EMBEDDING_PROVIDER", c.EmbeddingProvider))
	c.EmbeddingModel = getEnv("RAGVEDA_EMBEDDING_MODEL", c.EmbeddingModel)
	c.EmbeddingDimension = getEnvInt("RAGVEDA_EMBEDDING_DIM", c.EmbeddingDimension)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", c.RetryDelay)

	c.GeminiProjectID = getEnv("GEMINI_PROJECT_ID", c.GeminiProjectID)
	c.GeminiLocation = getEnv("GEMINI_LOCATION", c.GeminiLocation)
	c.GeminiModelID = getEnv("GEMINI_MODEL_ID", c.GeminiModelID)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.GeminiMaxOutputTokens = getEnvInt("GEMINI_MAX_OUTPUT_TOKENS", c.GeminiMaxOutputTokens)
	c.GeminiTemperature = getEnvFloat("GEMINI_TEMPERATURE", c.GeminiTemperature)
	c.GeminiTimeout = getEnvDuration("GEMINI_TIMEOUT", c.GeminiTimeout)
}

// GenerationEnabled reports whether a generative backend is configured.
// Without a project id or an explicit base URL the service answers extractively.
func (c *Config) GenerationEnabled() bool {
	return c.GeminiProjectID != "" || c.GeminiBaseURL != ""
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("RAGVEDA_DATA_FILE must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be 1-65535, got %d", c.Port)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("RAGVEDA_COLLECTION must not be empty")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("RAGVEDA_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("RAGVEDA_CHUNK_OVERLAP must be 0-%d, got %d", c.ChunkSize-1, c.ChunkOverlap)
	}
	if c.DefaultContextLimit <= 0 {
		return fmt.Errorf("RAGVEDA_CONTEXT_LIMIT must be positive, got %d", c.DefaultContextLimit)
	}
	switch c.EmbeddingProvider {
	case ProviderLocal:
		if c.EmbeddingDimension <= 0 {
			return fmt.Errorf("RAGVEDA_EMBEDDING_DIM must be positive, got %d", c.EmbeddingDimension)
		}
	case ProviderOpenAI:
	default:
		return fmt.Errorf("RAGVEDA_EMBEDDING_PROVIDER must be %q or %q, got %q", ProviderLocal, ProviderOpenAI, c.EmbeddingProvider)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.GeminiMaxOutputTokens <= 0 {
		return fmt.Errorf("GEMINI_MAX_OUTPUT_TOKENS must be positive, got %d", c.GeminiMaxOutputTokens)
	}
	if c.GeminiTemperature < 0 || c.GeminiTemperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE must be 0-2, got %f", c.GeminiTemperature)
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive, got %v", c.GeminiTimeout)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
