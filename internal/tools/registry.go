package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds the assistant's tools in registration order and
// dispatches invocations by name.
//
// Safe for concurrent use.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty registry. logger may be nil.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger, tools: make(map[string]Tool)}
}

// Register adds a tool. Re-registering a name replaces the previous
// tool in place; the original registration order is kept.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Schema is the model-facing description of one registered tool.
type Schema struct {
	Name        string
	Description string
}

// Schemas returns the tool descriptions in registration order.
func (r *Registry) Schemas() []Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		schemas = append(schemas, Schema{Name: tool.Name(), Description: tool.Description()})
	}
	return schemas
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Execute dispatches one invocation. An unknown name is reported to
// the model as the result string rather than failing the query; a
// registered tool's execution error propagates to the caller.
func (r *Registry) Execute(ctx context.Context, name string, args Arguments) (string, error) {
	tool, ok := r.Get(name)
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return "", fmt.Errorf("executing %s: %w", name, err)
	}
	return result, nil
}

// TakeCitations collects and clears the citations recorded by the most
// recent retrievals, in tool registration order.
func (r *Registry) TakeCitations() []Citation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var citations []Citation
	for _, name := range r.order {
		if src, ok := r.tools[name].(citationSource); ok {
			citations = append(citations, src.takeCitations()...)
		}
	}
	return citations
}

// ClearCitations discards any recorded citations.
func (r *Registry) ClearCitations() {
	r.TakeCitations()
}
