package knowledge_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/testutil"
)

func setupStore(t *testing.T) (*knowledge.Store, *testutil.FakeEmbedder) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool, cleanup := testutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	embedder := testutil.NewFakeEmbedder()
	return knowledge.New(pool, embedder, 5, testutil.DiscardLogger()), embedder
}

func intPtr(n int) *int { return &n }

func sampleCourse() knowledge.Course {
	return knowledge.Course{
		Title:      "Building Toward Computer Use",
		Link:       "https://example.com/courses/computer-use",
		Instructor: "Colt Steele",
		Lessons: []knowledge.Lesson{
			{Number: 0, Title: "Introduction", Link: "https://example.com/lesson/0"},
			{Number: 1, Title: "Models and Messages", Link: "https://example.com/lesson/1"},
			{Number: 2, Title: "Tool Use Basics", Link: "https://example.com/lesson/2"},
		},
	}
}

func TestStore_AddCourseAndCatalog_Integration(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	require.NoError(t, store.AddCourse(ctx, sampleCourse()))

	count, err := store.CourseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	titles, err := store.CourseTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Building Toward Computer Use"}, titles)

	// Re-ingesting the same course must not duplicate it.
	course := sampleCourse()
	course.Instructor = "Someone Else"
	require.NoError(t, store.AddCourse(ctx, course))

	count, err = store.CourseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "upsert should replace, not duplicate")
}

func TestStore_ResolveCourseName_Integration(t *testing.T) {
	ctx := context.Background()
	store, embedder := setupStore(t)

	// Empty catalog resolves to nothing rather than failing.
	_, ok, err := store.ResolveCourseName(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, ok, "empty catalog should resolve to no course")

	// Pin title and query embeddings so "MCP" lands nearest the MCP
	// course and far from the other one.
	embedder.SetVector("MCP: Build Rich-Context AI Apps", testutil.BasisVector(0))
	embedder.SetVector("Advanced Retrieval for AI", testutil.BasisVector(1))
	embedder.SetVector("MCP", testutil.BasisVector(0))

	require.NoError(t, store.AddCourse(ctx, knowledge.Course{Title: "MCP: Build Rich-Context AI Apps"}))
	require.NoError(t, store.AddCourse(ctx, knowledge.Course{Title: "Advanced Retrieval for AI"}))

	title, ok, err := store.ResolveCourseName(ctx, "MCP")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "MCP: Build Rich-Context AI Apps", title)
}

func TestStore_Search_Integration(t *testing.T) {
	ctx := context.Background()
	store, embedder := setupStore(t)

	course := sampleCourse()
	require.NoError(t, store.AddCourse(ctx, course))

	// Axis 0 is the query topic; chunk contents get progressively
	// farther vectors so ranking is deterministic.
	embedder.SetVector("what are tools", testutil.BasisVector(0))
	embedder.SetVector("Tools let the model call functions.", testutil.BasisVector(0))
	embedder.SetVector("Messages carry conversation state.", testutil.BasisVector(1))

	chunks := []knowledge.Chunk{
		{CourseTitle: course.Title, LessonNumber: intPtr(2), ChunkIndex: 0, Content: "Tools let the model call functions."},
		{CourseTitle: course.Title, LessonNumber: intPtr(1), ChunkIndex: 1, Content: "Messages carry conversation state."},
	}
	require.NoError(t, store.AddChunks(ctx, chunks))

	results := store.Search(ctx, "what are tools", "", nil)
	require.False(t, results.IsError(), "unexpected error: %s", results.Err)
	require.Len(t, results.Documents, 2)

	// Aligned triple, nearest first.
	assert.Equal(t, "Tools let the model call functions.", results.Documents[0])
	assert.Equal(t, course.Title, results.Metadata[0].CourseTitle)
	require.NotNil(t, results.Metadata[0].LessonNumber)
	assert.Equal(t, 2, *results.Metadata[0].LessonNumber)
	assert.Len(t, results.Metadata, len(results.Documents))
	assert.Len(t, results.Distances, len(results.Documents))
	assert.Less(t, results.Distances[0], results.Distances[1])
}

func TestStore_SearchLessonFilter_Integration(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	course := sampleCourse()
	require.NoError(t, store.AddCourse(ctx, course))
	require.NoError(t, store.AddChunks(ctx, []knowledge.Chunk{
		{CourseTitle: course.Title, LessonNumber: intPtr(1), ChunkIndex: 0, Content: "Lesson one content."},
		{CourseTitle: course.Title, LessonNumber: intPtr(2), ChunkIndex: 1, Content: "Lesson two content."},
	}))

	results := store.Search(ctx, "content", course.Title, intPtr(2))
	require.False(t, results.IsError(), "unexpected error: %s", results.Err)
	require.Len(t, results.Documents, 1)
	assert.Equal(t, "Lesson two content.", results.Documents[0])

	// A lesson with no chunks is an empty result, not an error.
	results = store.Search(ctx, "content", course.Title, intPtr(9))
	assert.False(t, results.IsError())
	assert.True(t, results.IsEmpty())
}

func TestStore_SearchUnknownCourse_Integration(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	// Nothing ingested, so any course filter fails resolution.
	results := store.Search(ctx, "anything", "Nonexistent Course", nil)
	require.True(t, results.IsError())
	assert.Equal(t, "No course found matching 'Nonexistent Course'", results.Err)
	assert.Empty(t, results.Documents)
}

func TestStore_SearchTopK_Integration(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	course := sampleCourse()
	require.NoError(t, store.AddCourse(ctx, course))

	chunks := make([]knowledge.Chunk, 8)
	for i := range chunks {
		chunks[i] = knowledge.Chunk{
			CourseTitle: course.Title,
			ChunkIndex:  i,
			Content:     fmt.Sprintf("Chunk number %d about the course.", i),
		}
	}
	require.NoError(t, store.AddChunks(ctx, chunks))

	results := store.Search(ctx, "course", "", nil)
	require.False(t, results.IsError())
	assert.Len(t, results.Documents, 5, "results should be capped at topK")
}

func TestStore_CourseOutline_Integration(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	require.NoError(t, store.AddCourse(ctx, sampleCourse()))

	outline, err := store.CourseOutline(ctx, "Building Toward Computer Use")
	require.NoError(t, err)

	want := "Course Title: Building Toward Computer Use\n" +
		"Course Link: https://example.com/courses/computer-use\n" +
		"\nLessons:\n" +
		"Lesson 0: Introduction\n" +
		"Lesson 1: Models and Messages\n" +
		"Lesson 2: Tool Use Basics"
	assert.Equal(t, want, outline)
}

func TestStore_CourseOutlineUnknown_Integration(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	_, err := store.CourseOutline(ctx, "anything")
	require.ErrorIs(t, err, knowledge.ErrCourseNotFound)
}

func TestStore_LessonInfo_Integration(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	require.NoError(t, store.AddCourse(ctx, sampleCourse()))

	title, link, err := store.LessonInfo(ctx, "Building Toward Computer Use", 1)
	require.NoError(t, err)
	assert.Equal(t, "Models and Messages", title)
	assert.Equal(t, "https://example.com/lesson/1", link)

	title, link, err = store.LessonInfo(ctx, "Building Toward Computer Use", 42)
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Empty(t, link)
}
