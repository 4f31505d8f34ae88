package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/testutil"
)

// scriptedTool is a minimal tool for registry dispatch tests.
type scriptedTool struct {
	name   string
	result string
	err    error
}

func (t *scriptedTool) Name() string        { return t.name }
func (t *scriptedTool) Description() string { return "test tool" }
func (t *scriptedTool) Execute(context.Context, Arguments) (string, error) {
	return t.result, t.err
}

func TestRegistry_RegisterAndNames(t *testing.T) {
	reg := NewRegistry(testutil.DiscardLogger())

	reg.Register(&scriptedTool{name: "beta"})
	reg.Register(&scriptedTool{name: "alpha"})

	// Registration order, not lexical order.
	assert.Equal(t, []string{"beta", "alpha"}, reg.Names())
}

func TestRegistry_Schemas(t *testing.T) {
	reg := NewRegistry(testutil.DiscardLogger())

	reg.Register(&scriptedTool{name: "beta"})
	reg.Register(&scriptedTool{name: "alpha"})

	schemas := reg.Schemas()
	require.Len(t, schemas, 2)
	assert.Equal(t, "beta", schemas[0].Name)
	assert.Equal(t, "alpha", schemas[1].Name)
	assert.Equal(t, "test tool", schemas[0].Description)
}

func TestRegistry_RegisterReplacement(t *testing.T) {
	reg := NewRegistry(testutil.DiscardLogger())

	reg.Register(&scriptedTool{name: "dup", result: "old"})
	reg.Register(&scriptedTool{name: "other"})
	reg.Register(&scriptedTool{name: "dup", result: "new"})

	// Last registration wins, original position kept.
	assert.Equal(t, []string{"dup", "other"}, reg.Names())

	out, err := reg.Execute(context.Background(), "dup", nil)
	require.NoError(t, err)
	assert.Equal(t, "new", out)
}

func TestRegistry_Execute(t *testing.T) {
	reg := NewRegistry(testutil.DiscardLogger())
	reg.Register(&scriptedTool{name: "echo", result: "tool output"})

	out, err := reg.Execute(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Equal(t, "tool output", out)
}

func TestRegistry_ExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry(testutil.DiscardLogger())

	// Unknown tools are reported to the model, not to the caller.
	out, err := reg.Execute(context.Background(), "bogus", nil)
	require.NoError(t, err)
	assert.Equal(t, "Tool 'bogus' not found", out)
}

func TestRegistry_ExecuteToolError(t *testing.T) {
	reg := NewRegistry(testutil.DiscardLogger())
	reg.Register(&scriptedTool{name: "broken", err: fmt.Errorf("boom")})

	_, err := reg.Execute(context.Background(), "broken", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
}

func TestRegistry_TakeCitations(t *testing.T) {
	store := &fakeStore{
		results:      resultsWith(knowledge.ChunkMetadata{CourseTitle: "Course A", LessonNumber: intPtr(1)}),
		lessonTitles: map[int]string{1: "Intro"},
	}
	search := NewCourseSearch(store, testutil.DiscardLogger())

	reg := NewRegistry(testutil.DiscardLogger())
	reg.Register(search)
	reg.Register(NewCourseOutline(store))

	_, err := reg.Execute(context.Background(), SearchToolName, Arguments{"query": "q"})
	require.NoError(t, err)

	citations := reg.TakeCitations()
	require.Len(t, citations, 1)
	assert.Equal(t, "Lesson 1: Intro", citations[0].Text)

	// Read-and-clear: a second take is empty.
	assert.Empty(t, reg.TakeCitations())
}

func TestRegistry_ClearCitations(t *testing.T) {
	store := &fakeStore{
		results: resultsWith(knowledge.ChunkMetadata{CourseTitle: "Course A"}),
	}
	search := NewCourseSearch(store, testutil.DiscardLogger())

	reg := NewRegistry(testutil.DiscardLogger())
	reg.Register(search)

	_, err := reg.Execute(context.Background(), SearchToolName, Arguments{"query": "q"})
	require.NoError(t, err)

	reg.ClearCitations()
	assert.Empty(t, reg.TakeCitations())
}
