// ABOUTME: Assembler turns retrieved contexts into the final answer text
// ABOUTME: Uses a generative backend when configured, otherwise falls back to extractive output
package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// NoResultsAnswer is returned when retrieval yields no contexts
const NoResultsAnswer = "I couldn't find relevant information to answer your question. " +
	"Please try rephrasing or ask about topics covered in the Bhagavad Gita."

const extractivePreamble = "Based on the Bhagavad Gita, here's what I found relevant to your question:"

const extractiveNote = "Note: This is a direct retrieval from the text. " +
	"For a more synthesized answer, configure the LLM integration."

// DefaultGenerateTimeout bounds a single generator call when none is configured
const DefaultGenerateTimeout = 30 * time.Second

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assembler builds answers from retrieved contexts
type Assembler struct {
	generator Generator
	timeout   time.Duration
}

// NewAssembler creates an Assembler. generator may be nil, in which case
// every answer is extractive.
func NewAssembler(generator Generator, timeout time.Duration) *Assembler {
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &Assembler{
		generator: generator,
		timeout:   timeout,
	}
}

// HasGenerator reports whether a generative backend is attached
func (a *Assembler) HasGenerator() bool {
	return a.generator != nil
}

// Answer returns the answer text for question given non-empty contexts.
// It never fails: generator errors, empty output, and timeouts are logged and
// the extractive answer is returned instead.
func (a *Assembler) Answer(ctx context.Context, question string, contexts []string) string {
	if a.generator == nil {
		return ExtractiveAnswer(contexts)
	}

	genCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.generator.Generate(genCtx, BuildPrompt(question, contexts))
	if err != nil {
		log.Printf("Warning: generation failed, using extractive answer: %v", err)
		return ExtractiveAnswer(contexts)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("Warning: generator returned empty text, using extractive answer")
		return ExtractiveAnswer(contexts)
	}

	return text
}

// BuildPrompt renders the grounded-answer prompt for the generator
func BuildPrompt(question string, contexts []string) string {
	var b strings.Builder
	b.WriteString("You are an expert assistant on the Bhagavad Gita and Indian philosophy. ")
	b.WriteString("Answer the question using ONLY the provided contexts. ")
	b.WriteString("If the answer is not present, say you don't have enough information.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	b.WriteString("Contexts:\n")
	b.WriteString(labelContexts(contexts))
	b.WriteString("\n\nAnswer in a concise, clear paragraph.")
	return b.String()
}

// ExtractiveAnswer presents the labelled contexts verbatim
func ExtractiveAnswer(contexts []string) string {
	return extractivePreamble + "\n\n" + labelContexts(contexts) + "\n\n" + extractiveNote
}

func labelContexts(contexts []string) string {
	parts := make([]string, len(contexts))
	for i, c := range contexts {
		parts[i] = fmt.Sprintf("Context %d:\n%s", i+1, c)
	}
	return strings.Join(parts, "\n\n")
}
