// Package tools defines the retrieval tools the assistant can invoke
// during a query: course content search and course outline lookup.
//
// Tools return plain strings for the model to read. Failures are split
// two ways: domain outcomes the model should see (no match, unknown
// course) come back as result strings, while infrastructure failures
// come back as Go errors for the orchestration loop to report.
package tools

import "context"

// Arguments carries a tool invocation's decoded JSON arguments.
type Arguments map[string]any

// Tool is one model-invocable operation.
type Tool interface {
	// Name returns the unique identifier the model calls the tool by.
	Name() string

	// Description tells the model when and how to use the tool.
	Description() string

	// Execute runs the tool and returns its result text.
	Execute(ctx context.Context, args Arguments) (string, error)
}

// Citation is one source reference surfaced to the end user alongside
// an answer.
type Citation struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// citationSource is implemented by tools that record citations for the
// most recent retrieval. take must return the recorded citations and
// clear them.
type citationSource interface {
	takeCitations() []Citation
}

// stringArg extracts an optional string argument.
func stringArg(args Arguments, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg extracts an optional integer argument. JSON decoding may
// deliver numbers as float64.
func intArg(args Arguments, key string) *int {
	switch v := args[key].(type) {
	case int:
		return &v
	case float64:
		n := int(v)
		return &n
	}
	return nil
}
