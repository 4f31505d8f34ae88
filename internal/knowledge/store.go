package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrCourseNotFound indicates a course name that resolves to nothing.
var ErrCourseNotFound = errors.New("course not found")

// searchTimeout bounds vector search queries to prevent blocking.
const searchTimeout = 10 * time.Second

// Store manages the course catalog and content chunks in PostgreSQL
// with pgvector similarity search.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool     *pgxpool.Pool
	embedder Embedder
	topK     int
	logger   *slog.Logger
}

// New creates a Store.
//
// topK caps the number of chunks returned per search (values < 1 fall
// back to 5). logger may be nil.
func New(pool *pgxpool.Pool, embedder Embedder, topK int, logger *slog.Logger) *Store {
	if topK < 1 {
		topK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, embedder: embedder, topK: topK, logger: logger}
}

// AddCourse inserts or replaces a course and its lesson list.
// The course title is embedded for fuzzy name resolution.
func (s *Store) AddCourse(ctx context.Context, course Course) error {
	titleEmbedding, err := s.embedder.Embed(ctx, course.Title)
	if err != nil {
		return fmt.Errorf("embedding course title %q: %w", course.Title, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", err)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO courses (title, link, instructor, title_embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (title) DO UPDATE
		SET link = EXCLUDED.link,
		    instructor = EXCLUDED.instructor,
		    title_embedding = EXCLUDED.title_embedding`,
		course.Title, course.Link, course.Instructor, pgvector.NewVector(titleEmbedding))
	if err != nil {
		return fmt.Errorf("upserting course %q: %w", course.Title, err)
	}

	// Replace the lesson list wholesale so re-ingestion stays idempotent.
	if _, err = tx.Exec(ctx, `DELETE FROM lessons WHERE course_title = $1`, course.Title); err != nil {
		return fmt.Errorf("clearing lessons for %q: %w", course.Title, err)
	}
	for _, lesson := range course.Lessons {
		_, err = tx.Exec(ctx, `
			INSERT INTO lessons (course_title, number, title, link)
			VALUES ($1, $2, $3, $4)`,
			course.Title, lesson.Number, lesson.Title, lesson.Link)
		if err != nil {
			return fmt.Errorf("inserting lesson %d of %q: %w", lesson.Number, course.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing course %q: %w", course.Title, err)
	}

	s.logger.Debug("added course", "title", course.Title, "lessons", len(course.Lessons))
	return nil
}

// AddChunks embeds and stores content chunks.
func (s *Store) AddChunks(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for i, chunk := range chunks {
		embedding, err := s.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %d of %q: %w", chunk.ChunkIndex, chunk.CourseTitle, err)
		}

		_, err = s.pool.Exec(ctx, `
			INSERT INTO chunks (course_title, lesson_number, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4, $5)`,
			chunk.CourseTitle, chunk.LessonNumber, chunk.ChunkIndex, chunk.Content,
			pgvector.NewVector(embedding))
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	s.logger.Debug("added chunks", "count", len(chunks))
	return nil
}

// Search performs semantic search over content chunks, optionally
// filtered by course name (fuzzily resolved first) and lesson number.
//
// Failures never surface as Go errors here: the backend contract is the
// three-state SearchResults, so resolution misses and query errors are
// reported through the Err field for the caller to relay.
func (s *Store) Search(ctx context.Context, query, courseName string, lessonNumber *int) SearchResults {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	var resolvedTitle string
	if courseName != "" {
		title, ok, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			return SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
		}
		if !ok {
			return SearchResults{Err: fmt.Sprintf("No course found matching '%s'", courseName)}
		}
		resolvedTitle = title
	}

	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
	}

	sql := `
		SELECT content, course_title, lesson_number, chunk_index, embedding <=> $1 AS distance
		FROM chunks`
	args := []any{pgvector.NewVector(queryEmbedding)}

	var conds []string
	if resolvedTitle != "" {
		args = append(args, resolvedTitle)
		conds = append(conds, fmt.Sprintf("course_title = $%d", len(args)))
	}
	if lessonNumber != nil {
		args = append(args, *lessonNumber)
		conds = append(conds, fmt.Sprintf("lesson_number = $%d", len(args)))
	}
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, s.topK)
	sql += fmt.Sprintf(" ORDER BY distance LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
	}
	defer rows.Close()

	var results SearchResults
	for rows.Next() {
		var (
			content  string
			meta     ChunkMetadata
			distance float64
		)
		if err := rows.Scan(&content, &meta.CourseTitle, &meta.LessonNumber, &meta.ChunkIndex, &distance); err != nil {
			return SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
		}
		results.Documents = append(results.Documents, content)
		results.Metadata = append(results.Metadata, meta)
		results.Distances = append(results.Distances, distance)
	}
	if err := rows.Err(); err != nil {
		return SearchResults{Err: fmt.Sprintf("Search error: %v", err)}
	}

	s.logger.Debug("searched chunks",
		"query_length", len(query),
		"course", resolvedTitle,
		"hits", len(results.Documents))
	return results
}

// ResolveCourseName resolves a partial or fuzzy course name to the
// nearest catalog title by title-embedding similarity.
//
// Returns ok=false when the catalog is empty or nothing matches; the
// candidate list is checked before use so an empty result never
// produces an out-of-range access.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, bool, error) {
	embedding, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("embedding course name %q: %w", name, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT title FROM courses
		ORDER BY title_embedding <=> $1
		LIMIT 1`,
		pgvector.NewVector(embedding))
	if err != nil {
		return "", false, fmt.Errorf("resolving course name %q: %w", name, err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return "", false, fmt.Errorf("scanning course title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("resolving course name %q: %w", name, err)
	}
	if len(titles) == 0 {
		return "", false, nil
	}
	return titles[0], true, nil
}

// LessonInfo returns the title and link of one lesson.
// Unknown lessons return empty strings with a nil error.
func (s *Store) LessonInfo(ctx context.Context, courseTitle string, lessonNumber int) (title, link string, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT title, COALESCE(link, '') FROM lessons
		WHERE course_title = $1 AND number = $2`,
		courseTitle, lessonNumber).Scan(&title, &link)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("looking up lesson %d of %q: %w", lessonNumber, courseTitle, err)
	}
	return title, link, nil
}

// CourseOutline resolves a course name and returns its stored title,
// link, and ordered lesson list as preformatted text. The caller must
// pass this through verbatim.
func (s *Store) CourseOutline(ctx context.Context, courseName string) (string, error) {
	title, ok, err := s.ResolveCourseName(ctx, courseName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrCourseNotFound, courseName)
	}

	var link string
	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(link, '') FROM courses WHERE title = $1`, title).Scan(&link); err != nil {
		return "", fmt.Errorf("loading course %q: %w", title, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT number, title FROM lessons
		WHERE course_title = $1
		ORDER BY number`, title)
	if err != nil {
		return "", fmt.Errorf("loading lessons for %q: %w", title, err)
	}
	defer rows.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "Course Title: %s\n", title)
	fmt.Fprintf(&b, "Course Link: %s\n", link)
	b.WriteString("\nLessons:\n")
	for rows.Next() {
		var (
			number      int
			lessonTitle string
		)
		if err := rows.Scan(&number, &lessonTitle); err != nil {
			return "", fmt.Errorf("scanning lesson: %w", err)
		}
		fmt.Fprintf(&b, "Lesson %d: %s\n", number, lessonTitle)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("loading lessons for %q: %w", title, err)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// CourseTitles returns every catalog title in alphabetical order.
func (s *Store) CourseTitles(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT title FROM courses ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning course title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// CourseCount returns the number of courses in the catalog.
func (s *Store) CourseCount(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return count, nil
}
