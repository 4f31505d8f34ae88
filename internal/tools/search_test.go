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

// fakeStore scripts retrieval outcomes for tool tests.
type fakeStore struct {
	results      knowledge.SearchResults
	lessonTitles map[int]string
	lessonLinks  map[int]string

	outline    string
	outlineErr error

	lastQuery  string
	lastCourse string
	lastLesson *int
}

func (f *fakeStore) Search(_ context.Context, query, courseName string, lessonNumber *int) knowledge.SearchResults {
	f.lastQuery = query
	f.lastCourse = courseName
	f.lastLesson = lessonNumber
	return f.results
}

func (f *fakeStore) LessonInfo(_ context.Context, _ string, lessonNumber int) (string, string, error) {
	return f.lessonTitles[lessonNumber], f.lessonLinks[lessonNumber], nil
}

func (f *fakeStore) CourseOutline(context.Context, string) (string, error) {
	return f.outline, f.outlineErr
}

func intPtr(n int) *int { return &n }

func resultsWith(hits ...knowledge.ChunkMetadata) knowledge.SearchResults {
	var r knowledge.SearchResults
	for i, meta := range hits {
		r.Documents = append(r.Documents, fmt.Sprintf("document %d", i))
		r.Metadata = append(r.Metadata, meta)
		r.Distances = append(r.Distances, float64(i)*0.1)
	}
	return r
}

func TestCourseSearch_Execute(t *testing.T) {
	store := &fakeStore{
		results: resultsWith(
			knowledge.ChunkMetadata{CourseTitle: "Course A", LessonNumber: intPtr(1)},
			knowledge.ChunkMetadata{CourseTitle: "Course B"},
		),
		lessonTitles: map[int]string{1: "Intro"},
		lessonLinks:  map[int]string{1: "https://example.com/a/1"},
	}
	tool := NewCourseSearch(store, testutil.DiscardLogger())

	out, err := tool.Execute(context.Background(), Arguments{"query": "what is RAG"})
	require.NoError(t, err)

	// One block per hit, with and without lesson attribution.
	assert.Equal(t, "[Course A - Lesson 1]\ndocument 0\n\n[Course B]\ndocument 1", out)
	assert.Equal(t, "what is RAG", store.lastQuery)
	assert.Empty(t, store.lastCourse)
	assert.Nil(t, store.lastLesson)

	citations := tool.takeCitations()
	require.Len(t, citations, 2)
	assert.Equal(t, Citation{Text: "Lesson 1: Intro", Link: "https://example.com/a/1"}, citations[0])
	assert.Equal(t, Citation{Text: "Course B"}, citations[1])
}

func TestCourseSearch_ExecuteFilters(t *testing.T) {
	store := &fakeStore{results: resultsWith(knowledge.ChunkMetadata{CourseTitle: "Course A"})}
	tool := NewCourseSearch(store, testutil.DiscardLogger())

	// lesson_number arrives as float64 when decoded from JSON.
	_, err := tool.Execute(context.Background(), Arguments{
		"query":         "embeddings",
		"course_name":   "MCP",
		"lesson_number": float64(3),
	})
	require.NoError(t, err)

	assert.Equal(t, "MCP", store.lastCourse)
	require.NotNil(t, store.lastLesson)
	assert.Equal(t, 3, *store.lastLesson)
}

func TestCourseSearch_ExecuteMissingQuery(t *testing.T) {
	tool := NewCourseSearch(&fakeStore{}, testutil.DiscardLogger())

	_, err := tool.Execute(context.Background(), Arguments{})
	require.Error(t, err)
}

func TestCourseSearch_ExecuteBackendError(t *testing.T) {
	store := &fakeStore{results: knowledge.SearchResults{Err: "No course found matching 'X'"}}
	tool := NewCourseSearch(store, testutil.DiscardLogger())

	// Backend error state becomes the result string, not a Go error.
	out, err := tool.Execute(context.Background(), Arguments{"query": "q"})
	require.NoError(t, err)
	assert.Equal(t, "No course found matching 'X'", out)
}

func TestCourseSearch_ExecuteEmpty(t *testing.T) {
	tool := NewCourseSearch(&fakeStore{}, testutil.DiscardLogger())

	tests := []struct {
		name string
		args Arguments
		want string
	}{
		{
			name: "no filters",
			args: Arguments{"query": "q"},
			want: "No relevant content found.",
		},
		{
			name: "course filter",
			args: Arguments{"query": "q", "course_name": "MCP"},
			want: "No relevant content found in course 'MCP'.",
		},
		{
			name: "both filters",
			args: Arguments{"query": "q", "course_name": "MCP", "lesson_number": float64(4)},
			want: "No relevant content found in course 'MCP' in lesson 4.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tool.Execute(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCourseSearch_CitationsReplaced(t *testing.T) {
	store := &fakeStore{
		results:      resultsWith(knowledge.ChunkMetadata{CourseTitle: "Course A", LessonNumber: intPtr(1)}),
		lessonTitles: map[int]string{1: "One", 2: "Two"},
	}
	tool := NewCourseSearch(store, testutil.DiscardLogger())

	_, err := tool.Execute(context.Background(), Arguments{"query": "first"})
	require.NoError(t, err)

	store.results = resultsWith(knowledge.ChunkMetadata{CourseTitle: "Course A", LessonNumber: intPtr(2)})
	_, err = tool.Execute(context.Background(), Arguments{"query": "second"})
	require.NoError(t, err)

	// Only the latest search's citations remain.
	citations := tool.takeCitations()
	require.Len(t, citations, 1)
	assert.Equal(t, "Lesson 2: Two", citations[0].Text)

	// takeCitations clears.
	assert.Empty(t, tool.takeCitations())
}

func TestCourseSearch_CitationsClearedOnEmptyAndError(t *testing.T) {
	store := &fakeStore{
		results:      resultsWith(knowledge.ChunkMetadata{CourseTitle: "Course A", LessonNumber: intPtr(1)}),
		lessonTitles: map[int]string{1: "One"},
	}
	tool := NewCourseSearch(store, testutil.DiscardLogger())

	_, err := tool.Execute(context.Background(), Arguments{"query": "first"})
	require.NoError(t, err)

	// An empty follow-up search wipes the previous citations.
	store.results = knowledge.SearchResults{}
	_, err = tool.Execute(context.Background(), Arguments{"query": "second"})
	require.NoError(t, err)
	assert.Empty(t, tool.takeCitations())

	// Same for an error-state search.
	store.results = resultsWith(knowledge.ChunkMetadata{CourseTitle: "Course A", LessonNumber: intPtr(1)})
	_, err = tool.Execute(context.Background(), Arguments{"query": "third"})
	require.NoError(t, err)
	store.results = knowledge.SearchResults{Err: "index unavailable"}
	_, err = tool.Execute(context.Background(), Arguments{"query": "fourth"})
	require.NoError(t, err)
	assert.Empty(t, tool.takeCitations())
}
