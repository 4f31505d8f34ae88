package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// SearchInput is the model-facing schema for search_course_content.
type SearchInput struct {
	Query        string `json:"query" jsonschema_description:"What to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema_description:"Course title (partial matches work)"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema_description:"Specific lesson number to search within"`
}

// OutlineInput is the model-facing schema for get_course_outline.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema_description:"Course title to get the outline for"`
}

// RegisterGenkit defines the registry's tools with Genkit so their
// schemas reach the model, and returns the refs to offer on generate
// calls. Dispatch still goes through Registry.Execute; the Genkit
// handlers are thin adapters used when a caller lets Genkit run tools
// itself.
func RegisterGenkit(g *genkit.Genkit, registry *Registry) ([]ai.ToolRef, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}

	refs := []ai.ToolRef{
		genkit.DefineTool(g, SearchToolName, searchDescription,
			func(ctx *ai.ToolContext, in SearchInput) (string, error) {
				return registry.Execute(ctx, SearchToolName, searchArgs(in))
			}),
		genkit.DefineTool(g, OutlineToolName, outlineDescription,
			func(ctx *ai.ToolContext, in OutlineInput) (string, error) {
				return registry.Execute(ctx, OutlineToolName, Arguments{"course_name": in.CourseName})
			}),
	}
	return refs, nil
}

func searchArgs(in SearchInput) Arguments {
	args := Arguments{"query": in.Query}
	if in.CourseName != "" {
		args["course_name"] = in.CourseName
	}
	if in.LessonNumber != nil {
		args["lesson_number"] = *in.LessonNumber
	}
	return args
}
