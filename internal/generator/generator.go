package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"

	"github.com/coursewise/coursewise/internal/tools"
)

// DefaultMaxRounds bounds tool-bearing model calls per query. Two
// rounds allow a broad search followed by one refinement.
const DefaultMaxRounds = 2

// Generator drives the orchestration loop: ask the model, execute any
// requested tools, feed results back, and stop when the model answers
// in plain text or the round budget runs out.
//
// One Generator serves many queries; all loop state is local to each
// Respond call.
type Generator struct {
	client    ModelClient
	registry  *tools.Registry
	toolRefs  []ai.ToolRef
	maxRounds int
	logger    *slog.Logger
}

// New creates a Generator. maxRounds < 1 falls back to
// DefaultMaxRounds; logger may be nil.
func New(client ModelClient, registry *tools.Registry, toolRefs []ai.ToolRef, maxRounds int, logger *slog.Logger) *Generator {
	if maxRounds < 1 {
		maxRounds = DefaultMaxRounds
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		client:    client,
		registry:  registry,
		toolRefs:  toolRefs,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Respond answers one query, optionally with formatted prior
// conversation for context.
//
// Respond always returns printable text: the model's answer, the
// forced final call's text after the round budget, or an
// "Error: <message>" string when a model call fails. Tool-level
// problems never abort the loop; they come back to the model as tool
// result content.
func (g *Generator) Respond(ctx context.Context, query, history string) string {
	system := systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	messages := []*ai.Message{ai.NewUserMessage(ai.NewTextPart(query))}

	for round := 1; round <= g.maxRounds; round++ {
		resp, err := g.client.Generate(ctx, GenerateRequest{
			System:   system,
			Messages: messages,
			Tools:    g.toolRefs,
		})

		outcome := classify(resp, err)
		switch outcome.kind {
		case roundFailed:
			g.logger.Error("model call failed", "round", round, "error", outcome.err)
			return fmt.Sprintf("Error: %v", outcome.err)
		case roundCompleted:
			g.logger.Debug("natural completion", "round", round)
			return outcome.text
		}

		g.logger.Debug("executing tool calls", "round", round, "count", len(outcome.calls))
		messages = append(messages, outcome.message, g.executeCalls(ctx, outcome.calls))
	}

	return g.finalResponse(ctx, system, messages)
}

// executeCalls runs the round's tool calls sequentially in request
// order and bundles the results into one message. Each result pairs
// with its request by ref, and a failing call never blocks siblings.
func (g *Generator) executeCalls(ctx context.Context, calls []ToolCall) *ai.Message {
	parts := make([]*ai.Part, 0, len(calls))
	for _, call := range calls {
		output, err := g.registry.Execute(ctx, call.Name, call.Args)
		if err != nil {
			g.logger.Warn("tool execution failed", "tool", call.Name, "error", err)
			output = fmt.Sprintf("Tool execution failed: %v", err)
		}
		parts = append(parts, ai.NewToolResponsePart(&ai.ToolResponse{
			Name:   call.Name,
			Ref:    call.Ref,
			Output: output,
		}))
	}
	return ai.NewMessage(ai.RoleTool, nil, parts...)
}

// finalResponse makes the forced tool-free call after the round budget
// is exhausted, so the user gets synthesized text instead of a raw
// unexecuted tool request.
func (g *Generator) finalResponse(ctx context.Context, system string, messages []*ai.Message) string {
	resp, err := g.client.Generate(ctx, GenerateRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		g.logger.Error("forced final call failed", "error", err)
		return fmt.Sprintf("Error generating final response: %v", err)
	}
	if text := resp.Text(); text != "" {
		return text
	}
	return "No response generated"
}
