// Package generator implements the bounded multi-round orchestration
// loop that interleaves generative model calls with retrieval tool
// execution until the model produces a final answer.
package generator

import (
	"context"
	"encoding/json"

	"github.com/firebase/genkit/go/ai"

	"github.com/coursewise/coursewise/internal/tools"
)

// GenerateRequest is one model invocation. A nil Tools slice disables
// tool offering, which the forced final call relies on.
type GenerateRequest struct {
	System   string
	Messages []*ai.Message
	Tools    []ai.ToolRef
}

// ModelClient is the generative model boundary. The production
// implementation drives Genkit; tests script responses.
type ModelClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*ai.ModelResponse, error)
}

// ToolCall is one tool invocation requested by the model. Ref is the
// opaque token that pairs the call with its result.
type ToolCall struct {
	Name string
	Ref  string
	Args tools.Arguments
}

type outcomeKind int

const (
	roundCompleted outcomeKind = iota
	roundToolCalls
	roundFailed
)

// roundOutcome is the tagged result of one model call, decided once
// immediately after the call returns so the loop matches on the kind
// instead of probing response fields.
type roundOutcome struct {
	kind    outcomeKind
	text    string
	message *ai.Message
	calls   []ToolCall
	err     error
}

// classify folds a model response and its error into a roundOutcome.
func classify(resp *ai.ModelResponse, err error) roundOutcome {
	if err != nil {
		return roundOutcome{kind: roundFailed, err: err}
	}

	requests := resp.ToolRequests()
	if len(requests) == 0 {
		return roundOutcome{kind: roundCompleted, text: resp.Text()}
	}

	calls := make([]ToolCall, 0, len(requests))
	for _, req := range requests {
		calls = append(calls, ToolCall{
			Name: req.Name,
			Ref:  req.Ref,
			Args: argumentsOf(req.Input),
		})
	}
	return roundOutcome{
		kind:    roundToolCalls,
		text:    resp.Text(),
		message: resp.Message,
		calls:   calls,
	}
}

// argumentsOf normalizes a tool request's input into Arguments. Model
// plugins usually deliver map[string]any; anything else goes through a
// JSON round-trip.
func argumentsOf(input any) tools.Arguments {
	if input == nil {
		return tools.Arguments{}
	}
	if m, ok := input.(map[string]any); ok {
		return tools.Arguments(m)
	}

	data, err := json.Marshal(input)
	if err != nil {
		return tools.Arguments{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return tools.Arguments{}
	}
	return tools.Arguments(m)
}
