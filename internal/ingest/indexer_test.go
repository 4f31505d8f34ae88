package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/coursewise/internal/knowledge"
	"github.com/coursewise/coursewise/internal/testutil"
)

type fakeCatalog struct {
	courses []knowledge.Course
	chunks  []knowledge.Chunk
}

func (f *fakeCatalog) CourseTitles(context.Context) ([]string, error) {
	titles := make([]string, len(f.courses))
	for i, c := range f.courses {
		titles[i] = c.Title
	}
	return titles, nil
}

func (f *fakeCatalog) AddCourse(_ context.Context, course knowledge.Course) error {
	f.courses = append(f.courses, course)
	return nil
}

func (f *fakeCatalog) AddChunks(_ context.Context, chunks []knowledge.Chunk) error {
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestIndexer_IngestFolder(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "course_a.txt", "Course Title: Course A\n\nLesson 1: Basics\nSome content about the basics.\n")
	writeDoc(t, dir, "course_b.md", "Course Title: Course B\n\nLesson 1: Intro\nOther content entirely.\n")
	writeDoc(t, dir, "notes.pdf", "ignored binary")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o750))

	catalog := &fakeCatalog{}
	ix := NewIndexer(catalog, NewProcessor(800, 100), testutil.DiscardLogger())

	courses, chunks, err := ix.IngestFolder(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, courses)
	assert.Equal(t, 2, chunks)
	assert.Len(t, catalog.courses, 2)
}

func TestIndexer_IngestFolderIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "course_a.txt", "Course Title: Course A\n\nLesson 1: Basics\nSome content about the basics.\n")

	catalog := &fakeCatalog{}
	ix := NewIndexer(catalog, NewProcessor(800, 100), testutil.DiscardLogger())

	_, _, err := ix.IngestFolder(context.Background(), dir)
	require.NoError(t, err)

	courses, chunks, err := ix.IngestFolder(context.Background(), dir)
	require.NoError(t, err)
	assert.Zero(t, courses, "second run should skip the indexed course")
	assert.Zero(t, chunks)
	assert.Len(t, catalog.courses, 1)
}

func TestIndexer_IngestFolderMissingDir(t *testing.T) {
	ix := NewIndexer(&fakeCatalog{}, NewProcessor(800, 100), testutil.DiscardLogger())

	_, _, err := ix.IngestFolder(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
