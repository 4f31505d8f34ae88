package knowledge

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

// Embedder turns text into a fixed-width embedding vector.
// Defined by the consumer so tests can supply a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenkitEmbedder adapts a Genkit ai.Embedder to the Embedder interface.
type GenkitEmbedder struct {
	embedder ai.Embedder
}

// NewGenkitEmbedder wraps a Genkit embedder registered by the provider
// plugin (e.g. googlegenai.GoogleAIEmbedder).
func NewGenkitEmbedder(embedder ai.Embedder) *GenkitEmbedder {
	return &GenkitEmbedder{embedder: embedder}
}

// Embed generates one embedding for the given text.
func (e *GenkitEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(text)}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generating embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned for %d-byte input", len(text))
	}
	return resp.Embeddings[0].Embedding, nil
}
