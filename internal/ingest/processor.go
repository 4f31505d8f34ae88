// Package ingest turns course documents into catalog entries and
// embedded content chunks.
//
// A course document is a plain-text file with three header lines
// (Course Title, Course Link, Course Instructor) followed by lesson
// sections introduced by "Lesson N: Title" markers, each optionally
// carrying a "Lesson Link:" line.
package ingest

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coursewise/coursewise/internal/knowledge"
)

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// Processor parses course documents and chunks their text for
// embedding. ChunkSize and ChunkOverlap are measured in characters.
type Processor struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewProcessor creates a Processor with the given chunking parameters.
// Non-positive sizes fall back to 800/100.
func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &Processor{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Parse reads one course document and returns the course metadata plus
// its content chunks. Chunk indices are sequential across the whole
// document, and every chunk carries a provenance prefix so retrieval
// hits stay attributable without their surrounding lesson.
func (p *Processor) Parse(content, fallbackTitle string) (knowledge.Course, []knowledge.Chunk, error) {
	var course knowledge.Course

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return course, nil, fmt.Errorf("reading document: %w", err)
	}

	body := p.parseHeader(lines, &course)
	if course.Title == "" {
		course.Title = fallbackTitle
	}
	if course.Title == "" {
		return course, nil, fmt.Errorf("document has no course title")
	}

	chunks := p.parseLessons(body, &course)
	return course, chunks, nil
}

// parseHeader consumes the leading "Course Title/Link/Instructor"
// lines and returns the remaining body lines.
func (p *Processor) parseHeader(lines []string, course *knowledge.Course) []string {
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
			continue
		case hasHeaderPrefix(line, "Course Title:"):
			course.Title = headerValue(line, "Course Title:")
		case hasHeaderPrefix(line, "Course Link:"):
			course.Link = headerValue(line, "Course Link:")
		case hasHeaderPrefix(line, "Course Instructor:"):
			course.Instructor = headerValue(line, "Course Instructor:")
		default:
			return lines[i:]
		}
	}
	return nil
}

// parseLessons walks the body, collecting lesson metadata and chunking
// each lesson's text. Text before the first lesson marker is chunked
// with no lesson number.
func (p *Processor) parseLessons(lines []string, course *knowledge.Course) []knowledge.Chunk {
	var (
		chunks        []knowledge.Chunk
		chunkIndex    int
		currentLesson *int
		buf           []string
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if text == "" {
			return
		}
		for _, piece := range chunkText(text, p.ChunkSize, p.ChunkOverlap) {
			chunks = append(chunks, knowledge.Chunk{
				CourseTitle:  course.Title,
				LessonNumber: currentLesson,
				ChunkIndex:   chunkIndex,
				Content:      contextPrefix(course.Title, currentLesson) + piece,
			})
			chunkIndex++
		}
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := lessonMarker.FindStringSubmatch(line); m != nil {
			flush()

			number, err := strconv.Atoi(m[1])
			if err != nil {
				// Unparseable marker, treat as content.
				buf = append(buf, lines[i])
				continue
			}
			lesson := knowledge.Lesson{Number: number, Title: strings.TrimSpace(m[2])}

			// An immediate "Lesson Link:" line belongs to the marker.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if hasHeaderPrefix(next, "Lesson Link:") {
					lesson.Link = headerValue(next, "Lesson Link:")
					i++
				}
			}

			course.Lessons = append(course.Lessons, lesson)
			n := number
			currentLesson = &n
			continue
		}

		buf = append(buf, lines[i])
	}
	flush()

	return chunks
}

// contextPrefix makes each stored chunk self-describing.
func contextPrefix(courseTitle string, lessonNumber *int) string {
	if lessonNumber != nil {
		return fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, *lessonNumber)
	}
	return fmt.Sprintf("Course %s content: ", courseTitle)
}

func hasHeaderPrefix(line, prefix string) bool {
	return len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix)
}

func headerValue(line, prefix string) string {
	return strings.TrimSpace(line[len(prefix):])
}

// chunkText splits text into chunks of at most chunkSize characters on
// sentence boundaries, with roughly overlap characters of trailing
// sentences repeated at the start of the next chunk. A single sentence
// longer than chunkSize becomes its own oversized chunk rather than
// being split mid-sentence.
func chunkText(text string, chunkSize, overlap int) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		var (
			size int
			j    = i
		)
		for j < len(sentences) {
			next := len(sentences[j])
			if size > 0 {
				next++ // joining space
			}
			if size > 0 && size+next > chunkSize {
				break
			}
			size += next
			j++
		}

		chunks = append(chunks, strings.Join(sentences[i:j], " "))
		if j >= len(sentences) {
			break
		}

		// Step back to repeat up to overlap characters of context.
		next := j
		carried := 0
		for next > i+1 && carried+len(sentences[next-1]) <= overlap {
			carried += len(sentences[next-1]) + 1
			next--
		}
		i = next
	}
	return chunks
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace. Normalizes internal whitespace so chunk sizes are stable
// across line wrapping.
func splitSentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(normalized); i++ {
		c := normalized[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(normalized) && normalized[i+1] != ' ' {
			continue
		}
		sentence := strings.TrimSpace(normalized[start : i+1])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(normalized[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
