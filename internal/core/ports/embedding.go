package ports

import "context"

// Embedder maps text to an L2-normalized vector of fixed dimensionality.
// Available reports whether an embedding backend is configured at all;
// callers degrade to neutral scoring when it is not.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Available() bool
}

// EmbeddingCache stores previously computed embeddings keyed by their
// source text. A miss is (nil, false, nil); cache errors are distinct
// from misses so callers can log them without treating them as fatal.
type EmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Put(ctx context.Context, text string, vector []float32) error
}
