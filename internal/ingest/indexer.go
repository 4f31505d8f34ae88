package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// Catalog is the subset of the knowledge store the indexer needs.
type Catalog interface {
	CourseTitles(ctx context.Context) ([]string, error)
	AddCourse(ctx context.Context, course knowledge.Course) error
	AddChunks(ctx context.Context, chunks []knowledge.Chunk) error
}

// Indexer ingests a folder of course documents into the catalog.
type Indexer struct {
	catalog   Catalog
	processor *Processor
	logger    *slog.Logger
}

// NewIndexer creates an Indexer. logger may be nil.
func NewIndexer(catalog Catalog, processor *Processor, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{catalog: catalog, processor: processor, logger: logger}
}

// IngestFolder parses every course document in dir and stores the new
// ones. Courses whose title is already in the catalog are skipped, so
// repeated runs are idempotent. Returns the number of courses and
// chunks added.
func (ix *Indexer) IngestFolder(ctx context.Context, dir string) (courses, chunks int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("reading docs directory %q: %w", dir, err)
	}

	existing, err := ix.catalog.CourseTitles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("listing existing courses: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isCourseDocument(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		added, count, err := ix.ingestFile(ctx, path, existing)
		if err != nil {
			return courses, chunks, err
		}
		if !added {
			continue
		}
		courses++
		chunks += count
	}

	ix.logger.Info("folder ingestion complete", "dir", dir, "courses", courses, "chunks", chunks)
	return courses, chunks, nil
}

// ingestFile parses one document and stores it unless already known.
func (ix *Indexer) ingestFile(ctx context.Context, path string, existing []string) (added bool, chunkCount int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, 0, fmt.Errorf("reading %q: %w", path, err)
	}

	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	course, chunks, err := ix.processor.Parse(string(data), fallback)
	if err != nil {
		return false, 0, fmt.Errorf("parsing %q: %w", path, err)
	}

	if slices.Contains(existing, course.Title) {
		ix.logger.Debug("skipping indexed course", "title", course.Title, "path", path)
		return false, 0, nil
	}

	if err := ix.catalog.AddCourse(ctx, course); err != nil {
		return false, 0, fmt.Errorf("storing course %q: %w", course.Title, err)
	}
	if err := ix.catalog.AddChunks(ctx, chunks); err != nil {
		return false, 0, fmt.Errorf("storing chunks for %q: %w", course.Title, err)
	}

	ix.logger.Info("ingested course", "title", course.Title, "lessons", len(course.Lessons), "chunks", len(chunks))
	return true, len(chunks), nil
}

func isCourseDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
