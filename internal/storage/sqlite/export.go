// ABOUTME: Export of an indexed collection for inspection and backup
// ABOUTME: Supports YAML and Markdown chunk listings plus a JSON vector dump
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportData represents an exported collection
type ExportData struct {
	Version     string        `yaml:"version" json:"version"`
	ExportedAt  string        `yaml:"exported_at" json:"exported_at"`
	Tool        string        `yaml:"tool" json:"tool"`
	Collection  string        `yaml:"collection" json:"collection"`
	Fingerprint string        `yaml:"fingerprint,omitempty" json:"fingerprint,omitempty"`
	Dimension   int           `yaml:"dimension" json:"dimension"`
	Entries     []ExportEntry `yaml:"entries" json:"entries"`
}

// ExportEntry is one indexed chunk
type ExportEntry struct {
	ID       string    `yaml:"id" json:"id"`
	Position int       `yaml:"position" json:"position"`
	Document string    `yaml:"document" json:"document"`
	Vector   []float32 `yaml:"-" json:"vector,omitempty"`
}

// Export reads all entries in insertion order. Vectors are included only
// when withVectors is set.
func (c *Collection) Export(ctx context.Context, withVectors bool) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "ragveda",
		Collection: c.name,
		Entries:    []ExportEntry{},
	}

	err := c.db.conn.QueryRowContext(ctx,
		"SELECT fingerprint, dimension FROM collections WHERE id = ?", c.id).Scan(&data.Fingerprint, &data.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	rows, err := c.db.conn.QueryContext(ctx, `
		SELECT id, position, document, vector
		FROM entries
		WHERE collection_id = ?
		ORDER BY position ASC
	`, c.id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			e    ExportEntry
			blob []byte
		)
		if err := rows.Scan(&e.ID, &e.Position, &e.Document, &blob); err != nil {
			return nil, err
		}
		if withVectors {
			e.Vector = blobToVector(blob)
		}
		data.Entries = append(data.Entries, e)
	}

	return data, rows.Err()
}

// WriteYAML writes the collection's chunks as YAML
func (c *Collection) WriteYAML(ctx context.Context, w io.Writer) error {
	data, err := c.Export(ctx, false)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// WriteMarkdown writes the collection's chunks as a Markdown document
func (c *Collection) WriteMarkdown(ctx context.Context, w io.Writer) error {
	data, err := c.Export(ctx, false)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "# Collection Export - %s\n\n", data.Collection)
	_, _ = fmt.Fprintf(w, "Generated: %s\n\n", data.ExportedAt)
	_, _ = fmt.Fprintf(w, "- **Chunks:** %d\n", len(data.Entries))
	_, _ = fmt.Fprintf(w, "- **Dimension:** %d\n", data.Dimension)
	if data.Fingerprint != "" {
		_, _ = fmt.Fprintf(w, "- **Fingerprint:** `%s`\n", data.Fingerprint)
	}
	_, _ = fmt.Fprintln(w)

	for _, e := range data.Entries {
		_, _ = fmt.Fprintf(w, "## %s\n\n", e.ID)
		fence := codeFence(e.Document)
		_, _ = fmt.Fprintf(w, "%s\n%s\n%s\n\n", fence, e.Document, fence)
	}
	return nil
}

// codeFence returns a backtick fence longer than any backtick run in text
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

// WriteJSON writes the collection including vectors as indented JSON
func (c *Collection) WriteJSON(ctx context.Context, w io.Writer) error {
	data, err := c.Export(ctx, true)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportToFile writes the collection to outputPath using write
func (c *Collection) ExportToFile(ctx context.Context, outputPath string, write func(*Collection, context.Context, io.Writer) error) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return write(c, ctx, file)
}
