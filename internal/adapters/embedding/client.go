// Package embedding is a client for an OpenAI-compatible
// /v1/embeddings endpoint. Vectors are L2-normalized before they are
// returned so cosine similarity downstream reduces to a dot product.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/finchley-labs/autodj/internal/core/ports"
)

const requestTimeout = 30 * time.Second

// ErrUnavailable is returned when no embedding endpoint is configured.
var ErrUnavailable = errors.New("embedding: no endpoint configured")

// Client calls the embedding endpoint lazily. The first successful call
// fixes the vector dimensionality; later responses with a different
// shape are rejected rather than silently corrupting the taste
// centroid. The dimension probe is guarded by a mutex so concurrent
// first callers block behind a single loader instead of racing.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      ports.EmbeddingCache // optional

	mu  sync.Mutex
	dim int
}

var _ ports.Embedder = (*Client)(nil)

// NewClient builds an embedder for the endpoint at baseURL (e.g.
// "http://localhost:11434/v1"). An empty baseURL produces a client
// whose Available() is false; callers then degrade to neutral scoring.
// cache may be nil.
func NewClient(baseURL, apiKey, model string, cache ports.EmbeddingCache) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache,
	}
}

// Available reports whether an embedding backend is configured.
func (c *Client) Available() bool {
	return c.baseURL != ""
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the normalized vector for text, consulting the cache
// first. Cache failures are logged and treated as misses.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	if c.cache != nil {
		vec, ok, err := c.cache.Get(ctx, text)
		if err != nil {
			log.Printf("WARN embedding: cache read: %v", err)
		} else if ok {
			return vec, nil
		}
	}

	vec, err := c.fetch(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.dim == 0 {
		c.dim = len(vec)
	} else if c.dim != len(vec) {
		c.mu.Unlock()
		return nil, fmt.Errorf("embedding: dimension changed from %d to %d", c.dim, len(vec))
	}
	c.mu.Unlock()

	if c.cache != nil {
		if err := c.cache.Put(ctx, text, vec); err != nil {
			log.Printf("WARN embedding: cache write: %v", err)
		}
	}
	return vec, nil
}

func (c *Client) fetch(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embeddingRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding: unexpected status %d", resp.StatusCode)
	}

	var body embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(body.Data) == 0 || len(body.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding: empty embedding in response")
	}

	return normalize(body.Data[0].Embedding), nil
}

// normalize scales the vector to unit length. A zero vector is returned
// as-is.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}
