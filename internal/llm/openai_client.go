// ABOUTME: Chat completion generator for grounded answers over an OpenAI-compatible API
// ABOUTME: Targets Gemini on Vertex AI by default; any compatible base URL can be used
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoCompletion is returned when the backend answers with no choices
var ErrNoCompletion = errors.New("no completion choices returned")

// BackendError wraps a failure from the generative backend
type BackendError struct {
	Model string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("generation with %s failed: %v", e.Model, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// GeneratorConfig holds configuration for the chat generator
type GeneratorConfig struct {
	ProjectID       string
	Location        string
	Model           string
	APIKey          string
	BaseURL         string
	MaxOutputTokens int
	Temperature     float64
}

// VertexBaseURL returns the OpenAI-compatible endpoint for a Vertex AI project
func VertexBaseURL(projectID, location string) string {
	return fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1beta1/projects/%s/locations/%s/endpoints/openapi",
		location, projectID, location,
	)
}

// ChatGenerator produces answers with chat completions
type ChatGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewChatGenerator creates a generator. Either a project id or an explicit
// base URL is required.
func NewChatGenerator(cfg GeneratorConfig) (*ChatGenerator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("project id or base URL is required")
		}
		location := cfg.Location
		if location == "" {
			location = "us-central1"
		}
		baseURL = VertexBaseURL(cfg.ProjectID, location)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(baseURL, "/")

	// go-openai omits a zero temperature from the request
	temperature := float32(cfg.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	return &ChatGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxOutputTokens,
		temperature: temperature,
	}, nil
}

// Model returns the configured model id
func (g *ChatGenerator) Model() string {
	return g.model
}

// Generate sends prompt as a single user message and returns the reply text
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", &BackendError{Model: g.model, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{Model: g.model, Err: ErrNoCompletion}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
