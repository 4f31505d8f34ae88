package generator

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// GenkitClient is the production ModelClient. It drives Genkit with
// tool requests returned unexecuted, so the orchestration loop owns
// dispatch, result pairing, and the round budget instead of Genkit's
// internal turn loop.
type GenkitClient struct {
	g         *genkit.Genkit
	modelName string
	maxTokens int
}

// NewGenkitClient creates a client for the given fully qualified model
// name (e.g. "googleai/gemini-2.5-flash" or "ollama/llama3.2").
func NewGenkitClient(g *genkit.Genkit, modelName string, maxTokens int) (*GenkitClient, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &GenkitClient{g: g, modelName: modelName, maxTokens: maxTokens}, nil
}

// Generate makes one model call. Temperature is pinned to zero for
// deterministic answers. Tools are offered with automatic tool choice
// only when the request carries them.
func (c *GenkitClient) Generate(ctx context.Context, req GenerateRequest) (*ai.ModelResponse, error) {
	opts := []ai.GenerateOption{
		ai.WithModelName(c.modelName),
		ai.WithSystem(req.System),
		ai.WithMessages(req.Messages...),
		ai.WithConfig(&ai.GenerationCommonConfig{
			Temperature:     0,
			MaxOutputTokens: c.maxTokens,
		}),
	}
	if len(req.Tools) > 0 {
		opts = append(opts,
			ai.WithTools(req.Tools...),
			ai.WithToolChoice(ai.ToolChoiceAuto),
			ai.WithReturnToolRequests(true),
		)
	}
	return genkit.Generate(ctx, c.g, opts...)
}
