// ABOUTME: SQLite schema for named vector collections
// ABOUTME: Entries hold the chunk id, document text, and little-endian float32 vector
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Named collections, one per corpus
CREATE TABLE IF NOT EXISTS collections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    fingerprint TEXT NOT NULL DEFAULT '',
    dimension INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexed documents and their embeddings
CREATE TABLE IF NOT EXISTS entries (
    collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    id TEXT NOT NULL,
    position INTEGER NOT NULL,
    document TEXT NOT NULL,
    vector BLOB NOT NULL,
    PRIMARY KEY (collection_id, id)
);

CREATE INDEX IF NOT EXISTS idx_entries_position ON entries(collection_id, position);
`
