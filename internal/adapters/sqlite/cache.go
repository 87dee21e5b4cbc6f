// Package sqlite provides a SQLite-backed cache for embedding vectors.
// Track descriptions are stable, so a hit saves a round trip to the
// embedding backend on every replay of a familiar track.
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/finchley-labs/autodj/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// EmbeddingCache implements the embedding cache port for SQLite.
type EmbeddingCache struct {
	db *sql.DB
}

var _ ports.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates a connection and runs the schema migration.
func NewEmbeddingCache(storagePath string) (*EmbeddingCache, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	cache := &EmbeddingCache{db: db}
	if err := cache.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return cache, nil
}

// Close ensures the DB connection is closed gracefully.
func (c *EmbeddingCache) Close() error {
	return c.db.Close()
}

func (c *EmbeddingCache) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		text_hash TEXT PRIMARY KEY,
		vector BLOB NOT NULL
	);`
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the cached vector for text, with ok=false on a miss.
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool, error) {
	row := c.db.QueryRowContext(ctx, "SELECT vector FROM embeddings WHERE text_hash = ?", hashKey(text))

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load embedding: %w", err)
	}

	vec, err := decodeVector(blob)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode embedding: %w", err)
	}
	return vec, true, nil
}

// Put stores the vector for text, replacing any previous entry.
func (c *EmbeddingCache) Put(ctx context.Context, text string, vector []float32) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO embeddings (text_hash, vector) VALUES (?, ?)",
		hashKey(text), encodeVector(vector))
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

func hashKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
