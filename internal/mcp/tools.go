// ABOUTME: MCP tool definitions and registration for the ragveda server
// ABOUTME: Exposes question answering, corpus stats, and engine health over stdio
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, engine Engine) *Handlers {
	handlers := &Handlers{engine: engine}

	// 1. ask_question - Answer a question from the indexed corpus
	server.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question about the Bhagavad Gita using passages retrieved from the indexed text. Returns the answer and the source passages.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language question",
				},
				"context_limit": map[string]interface{}{
					"type":        "number",
					"description": "Number of passages to retrieve (default: 3)",
					"default":     3,
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskQuestion)

	// 2. corpus_stats - Report the indexed collection
	server.AddTool(mcp.Tool{
		Name:        "corpus_stats",
		Description: "Report the number of indexed passages, the collection name, and the source file.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.CorpusStats)

	// 3. engine_health - Report readiness
	server.AddTool(mcp.Tool{
		Name:        "engine_health",
		Description: "Report whether the question-answering engine is initializing, ready, or not ready.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.EngineHealth)

	return handlers
}
