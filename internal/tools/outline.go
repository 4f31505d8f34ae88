package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// OutlineToolName is the identifier the model uses to fetch a course
// outline.
const OutlineToolName = "get_course_outline"

const outlineDescription = "Get the outline of a course: its title, link, and the full ordered lesson list. " +
	"Use for questions about a course's structure, lesson list, or what a course covers overall. " +
	"Course names may be partial."

// OutlineProvider is the retrieval surface the outline tool needs.
type OutlineProvider interface {
	CourseOutline(ctx context.Context, courseName string) (string, error)
}

// CourseOutline returns preformatted course outlines. The store's
// formatting is passed through untouched.
type CourseOutline struct {
	store OutlineProvider
}

// NewCourseOutline creates the outline tool.
func NewCourseOutline(store OutlineProvider) *CourseOutline {
	return &CourseOutline{store: store}
}

func (t *CourseOutline) Name() string        { return OutlineToolName }
func (t *CourseOutline) Description() string { return outlineDescription }

// Execute resolves the course name and returns its outline. An
// unresolvable name is a domain outcome the model should see, not an
// execution failure.
func (t *CourseOutline) Execute(ctx context.Context, args Arguments) (string, error) {
	courseName := stringArg(args, "course_name")
	if courseName == "" {
		return "", fmt.Errorf("missing required argument: course_name")
	}

	outline, err := t.store.CourseOutline(ctx, courseName)
	if errors.Is(err, knowledge.ErrCourseNotFound) {
		return fmt.Sprintf("No course found matching '%s'", courseName), nil
	}
	if err != nil {
		return "", err
	}
	return outline, nil
}
