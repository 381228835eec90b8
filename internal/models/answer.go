// ABOUTME: Question and Answer models for the ask contract
// ABOUTME: Sources are truncated previews of the retrieved chunks
package models

// SourcePreviewLength is the number of characters kept from each retrieved chunk
const SourcePreviewLength = 100

// Question is one ask request
type Question struct {
	Question     string `json:"question"`
	ContextLimit *int   `json:"context_limit,omitempty"`
}

// Answer is the engine's response to one question
type Answer struct {
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
	Question string   `json:"question"`

	// Passages are the full retrieved chunks behind Sources, best first
	Passages []SearchResult `json:"-"`
}

// TruncateSource returns the first SourcePreviewLength characters of text,
// followed by "..." when anything was cut.
func TruncateSource(text string) string {
	runes := []rune(text)
	if len(runes) <= SourcePreviewLength {
		return text
	}
	return string(runes[:SourcePreviewLength]) + "..."
}

// SourcesFrom builds the ordered source previews for retrieved contexts
func SourcesFrom(contexts []string) []string {
	sources := make([]string, len(contexts))
	for i, ctx := range contexts {
		sources[i] = TruncateSource(ctx)
	}
	return sources
}
