package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
)

func testCache(t *testing.T) *EmbeddingCache {
	t.Helper()
	cache, err := NewEmbeddingCache(filepath.Join(t.TempDir(), "embeddings.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestEmbeddingCache_RoundTrip(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()
	vec := []float32{0.25, -0.5, 1.0, 0}

	if err := cache.Put(ctx, "Windowlicker by Aphex Twin", vec); err != nil {
		t.Fatal(err)
	}

	got, ok, err := cache.Get(ctx, "Windowlicker by Aphex Twin")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("stored vector not found")
	}
	if !reflect.DeepEqual(got, vec) {
		t.Errorf("got %v, want %v", got, vec)
	}
}

func TestEmbeddingCache_Miss(t *testing.T) {
	cache := testCache(t)

	_, ok, err := cache.Get(context.Background(), "never stored")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unexpected hit for a missing key")
	}
}

func TestEmbeddingCache_Replace(t *testing.T) {
	cache := testCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, "text", []float32{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put(ctx, "text", []float32{3, 4}); err != nil {
		t.Fatal(err)
	}

	got, ok, err := cache.Get(ctx, "text")
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, []float32{3, 4}) {
		t.Errorf("got %v, want the replacement vector", got)
	}
}

func TestVectorEncoding(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
	}{
		{"empty", []float32{}},
		{"single", []float32{-1.5}},
		{"typical", []float32{0.1, 0.2, -0.3, 0.999}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeVector(encodeVector(tt.vec))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.vec) {
				t.Errorf("got %v, want %v", got, tt.vec)
			}
		})
	}
}

func TestDecodeVector_Malformed(t *testing.T) {
	if _, err := decodeVector([]byte{1, 2}); err == nil {
		t.Error("expected an error for a truncated header")
	}
	if _, err := decodeVector([]byte{2, 0, 0, 0, 1, 2, 3}); err == nil {
		t.Error("expected an error for a length/dimension mismatch")
	}
}
