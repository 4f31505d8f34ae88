package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/coursewise/coursewise/internal/knowledge"
)

// SearchToolName is the identifier the model uses to search course
// content.
const SearchToolName = "search_course_content"

const searchDescription = "Search course materials with smart course name matching and lesson filtering. " +
	"Use for questions about specific course content or detailed educational materials. " +
	"Course names may be partial (e.g. 'MCP' matches 'MCP: Build Rich-Context AI Apps')."

// ContentSearcher is the retrieval surface the search tool needs.
type ContentSearcher interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) knowledge.SearchResults
	LessonInfo(ctx context.Context, courseTitle string, lessonNumber int) (title, link string, err error)
}

// CourseSearch searches course content and records a citation per hit.
// Citations are replaced on every search that returns results, so
// TakeCitations on the registry always reflects the latest retrieval.
//
// Safe for concurrent use.
type CourseSearch struct {
	store  ContentSearcher
	logger *slog.Logger

	mu        sync.Mutex
	citations []Citation
}

// NewCourseSearch creates the content search tool. logger may be nil.
func NewCourseSearch(store ContentSearcher, logger *slog.Logger) *CourseSearch {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseSearch{store: store, logger: logger}
}

func (t *CourseSearch) Name() string        { return SearchToolName }
func (t *CourseSearch) Description() string { return searchDescription }

// Execute runs a search. The backend's three result states map to
// three result strings: the backend's own error message, a "No
// relevant content found" message naming the active filters, or
// formatted result blocks.
func (t *CourseSearch) Execute(ctx context.Context, args Arguments) (string, error) {
	query := stringArg(args, "query")
	if query == "" {
		return "", fmt.Errorf("missing required argument: query")
	}
	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number")

	results := t.store.Search(ctx, query, courseName, lessonNumber)
	if results.IsError() {
		t.logger.Debug("search returned backend error", "error", results.Err)
		t.setCitations(nil)
		return results.Err, nil
	}
	if results.IsEmpty() {
		t.setCitations(nil)
		return emptyMessage(courseName, lessonNumber), nil
	}
	return t.formatResults(ctx, results), nil
}

// formatResults renders result blocks and replaces the recorded
// citations with this search's sources.
func (t *CourseSearch) formatResults(ctx context.Context, results knowledge.SearchResults) string {
	blocks := make([]string, 0, len(results.Documents))
	citations := make([]Citation, 0, len(results.Documents))

	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		header := meta.CourseTitle
		if meta.LessonNumber != nil {
			header = fmt.Sprintf("%s - Lesson %d", meta.CourseTitle, *meta.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", header, doc))
		citations = append(citations, t.citationFor(ctx, meta))
	}

	t.setCitations(citations)
	return strings.Join(blocks, "\n\n")
}

// citationFor builds the user-facing source reference for one hit.
// Hits with a lesson number cite the lesson, with its title and link
// when the lookup succeeds; hits without one cite the course alone.
func (t *CourseSearch) citationFor(ctx context.Context, meta knowledge.ChunkMetadata) Citation {
	if meta.LessonNumber == nil {
		return Citation{Text: meta.CourseTitle}
	}

	n := *meta.LessonNumber
	// A failed lookup degrades the citation, not the search.
	title, link, err := t.store.LessonInfo(ctx, meta.CourseTitle, n)
	if err != nil {
		return Citation{Text: fmt.Sprintf("Lesson %d", n)}
	}
	if title == "" {
		return Citation{Text: fmt.Sprintf("Lesson %d", n), Link: link}
	}
	return Citation{Text: fmt.Sprintf("Lesson %d: %s", n, title), Link: link}
}

func (t *CourseSearch) setCitations(citations []Citation) {
	t.mu.Lock()
	t.citations = citations
	t.mu.Unlock()
}

// takeCitations returns and clears the last recorded citations.
func (t *CourseSearch) takeCitations() []Citation {
	t.mu.Lock()
	defer t.mu.Unlock()
	citations := t.citations
	t.citations = nil
	return citations
}

// emptyMessage names the filters that were active when nothing
// matched.
func emptyMessage(courseName string, lessonNumber *int) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if courseName != "" {
		fmt.Fprintf(&b, " in course '%s'", courseName)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&b, " in lesson %d", *lessonNumber)
	}
	b.WriteString(".")
	return b.String()
}
