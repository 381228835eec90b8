// ABOUTME: MCP tool handler implementations for the ragveda server
// ABOUTME: Tool failures are reported as error results, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/ragveda/internal/core"
	"github.com/harper/ragveda/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// Engine is the subset of the RAG engine the tools need
type Engine interface {
	Ask(ctx context.Context, question string, contextLimit *int) (*models.Answer, error)
	Health() models.Health
	Stats(ctx context.Context) (models.Stats, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	engine Engine
}

// AskQuestion handles the ask_question tool
func (h *Handlers) AskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	var limit *int
	if _, ok := request.GetArguments()["context_limit"]; ok {
		n := request.GetInt("context_limit", 0)
		limit = &n
	}

	answer, err := h.engine.Ask(ctx, question, limit)
	if errors.Is(err, core.ErrNotReady) {
		return mcp.NewToolResultError("RAG engine not ready"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error processing question: %v", err)), nil
	}

	return jsonResult(answer)
}

// CorpusStats handles the corpus_stats tool
func (h *Handlers) CorpusStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.engine.Stats(ctx)
	if errors.Is(err, core.ErrNotReady) {
		return mcp.NewToolResultError("RAG engine not ready"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read stats: %v", err)), nil
	}

	return jsonResult(stats)
}

// EngineHealth handles the engine_health tool
func (h *Handlers) EngineHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.engine.Health())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
