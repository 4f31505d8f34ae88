package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// EmbeddingDim matches the vector(768) columns in the schema.
const EmbeddingDim = 768

// FakeEmbedder produces deterministic embedding vectors without any
// API access. The same text always yields the same unit vector, and
// explicit vectors can be pinned for precise similarity control.
//
// Thread-safe for concurrent use.
type FakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
}

// NewFakeEmbedder creates a fake embedder with no pinned vectors.
func NewFakeEmbedder() *FakeEmbedder {
	return &FakeEmbedder{vectors: make(map[string][]float32)}
}

// SetVector pins an explicit vector for a text. Use this to control
// exact cosine distances between test inputs.
func (e *FakeEmbedder) SetVector(text string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vectors[text] = vec
}

// Embed returns the pinned vector for text if one exists, otherwise a
// deterministic vector derived from a SHA-256 hash.
func (e *FakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	if v, ok := e.vectors[text]; ok {
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()
	return deterministicVector(text, EmbeddingDim), nil
}

// deterministicVector generates a normalized vector from text. The
// hash bytes seed each component, mapped into [-1, 1].
func deterministicVector(text string, dim int) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, dim)

	for i := range vec {
		idx := (i * 4) % len(hash)
		bits := binary.LittleEndian.Uint32([]byte{
			hash[idx%32],
			hash[(idx+1)%32],
			hash[(idx+2)%32],
			hash[(idx+3)%32],
		})
		vec[i] = (float32(bits)/float32(math.MaxUint32))*2 - 1
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// BasisVector returns a unit vector with a single 1 at the given axis.
// Pinning different axes to different texts makes them orthogonal, and
// the same axis makes them identical, which gives tests exact control
// over nearest-neighbor ordering.
func BasisVector(axis int) []float32 {
	vec := make([]float32, EmbeddingDim)
	vec[axis%EmbeddingDim] = 1
	return vec
}
