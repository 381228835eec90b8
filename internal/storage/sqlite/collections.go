// ABOUTME: Named vector collections with bulk insert and cosine similarity search
// ABOUTME: Vectors are stored as float32 BLOBs and ranked in Go
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/harper/ragveda/internal/models"
)

// ErrCollectionNotFound is returned when a named collection does not exist
var ErrCollectionNotFound = errors.New("collection not found")

// Collection is a named set of (id, document, vector) entries
type Collection struct {
	db   *DB
	id   int64
	name string
}

// GetCollection returns the named collection or ErrCollectionNotFound
func (db *DB) GetCollection(ctx context.Context, name string) (*Collection, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx, "SELECT id FROM collections WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up collection %s: %w", name, err)
	}
	return &Collection{db: db, id: id, name: name}, nil
}

// CreateCollection creates an empty collection. Fails if name is taken.
func (db *DB) CreateCollection(ctx context.Context, name string) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	res, err := db.conn.ExecContext(ctx, "INSERT INTO collections (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read collection id: %w", err)
	}
	return &Collection{db: db, id: id, name: name}, nil
}

// GetOrCreateCollection returns the named collection, creating it when missing
func (db *DB) GetOrCreateCollection(ctx context.Context, name string) (*Collection, error) {
	c, err := db.GetCollection(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrCollectionNotFound) {
		return nil, err
	}
	return db.CreateCollection(ctx, name)
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// Count returns the number of entries
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE collection_id = ?", c.id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Add inserts entries in one transaction, after any existing entries.
// All slices must have the same length, ids must be unique, and every
// vector must match the collection's dimension.
func (c *Collection) Add(ctx context.Context, embeddings [][]float32, documents []string, ids []string) error {
	if len(embeddings) != len(documents) || len(documents) != len(ids) {
		return fmt.Errorf("mismatched lengths: %d embeddings, %d documents, %d ids",
			len(embeddings), len(documents), len(ids))
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := c.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var dim, next int
	if err := tx.QueryRowContext(ctx, "SELECT dimension FROM collections WHERE id = ?", c.id).Scan(&dim); err != nil {
		return fmt.Errorf("failed to read collection dimension: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM entries WHERE collection_id = ?", c.id).Scan(&next); err != nil {
		return fmt.Errorf("failed to read next position: %w", err)
	}

	if dim == 0 {
		dim = len(embeddings[0])
		if _, err := tx.ExecContext(ctx, "UPDATE collections SET dimension = ? WHERE id = ?", dim, c.id); err != nil {
			return fmt.Errorf("failed to set collection dimension: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (collection_id, id, position, document, vector) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, id := range ids {
		emb := models.Embedding{ChunkID: id, Vector: embeddings[i]}
		if err := emb.ValidateDimension(dim); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.id, id, next+i, documents[i], vectorToBlob(embeddings[i])); err != nil {
			return fmt.Errorf("failed to insert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}
	return nil
}

// Query returns at most k entries ordered by decreasing cosine similarity to
// embedding. Ties keep insertion order.
func (c *Collection) Query(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("result count must be positive, got %d", k)
	}

	rows, err := c.db.conn.QueryContext(ctx, `
		SELECT id, document, vector
		FROM entries
		WHERE collection_id = ?
		ORDER BY position ASC
	`, c.id)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.SearchResult
	for rows.Next() {
		var (
			r    models.SearchResult
			blob []byte
		)
		if err := rows.Scan(&r.ID, &r.Document, &blob); err != nil {
			return nil, err
		}
		vector := blobToVector(blob)
		if len(vector) != len(embedding) {
			return nil, fmt.Errorf("query dimension %d does not match stored dimension %d", len(embedding), len(vector))
		}
		r.Similarity = CosineSimilarity(embedding, vector)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sort by similarity descending
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Fingerprint returns the stored build fingerprint, empty if never set
func (c *Collection) Fingerprint(ctx context.Context) (string, error) {
	var fp string
	err := c.db.conn.QueryRowContext(ctx, "SELECT fingerprint FROM collections WHERE id = ?", c.id).Scan(&fp)
	if err != nil {
		return "", fmt.Errorf("failed to read fingerprint: %w", err)
	}
	return fp, nil
}

// SetFingerprint records the build fingerprint
func (c *Collection) SetFingerprint(ctx context.Context, fingerprint string) error {
	_, err := c.db.conn.ExecContext(ctx, "UPDATE collections SET fingerprint = ? WHERE id = ?", fingerprint, c.id)
	if err != nil {
		return fmt.Errorf("failed to store fingerprint: %w", err)
	}
	return nil
}

// Reset removes all entries and clears the fingerprint and dimension
func (c *Collection) Reset(ctx context.Context) error {
	tx, err := c.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE collection_id = ?", c.id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE collections SET fingerprint = '', dimension = 0 WHERE id = ?", c.id); err != nil {
		return fmt.Errorf("failed to reset collection: %w", err)
	}
	return tx.Commit()
}

// vectorToBlob converts a float32 slice to a little-endian blob
func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// blobToVector converts a little-endian blob to a float32 slice
func blobToVector(blob []byte) []float32 {
	count := len(blob) / 4
	vector := make([]float32, count)
	for i := 0; i < count; i++ {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
