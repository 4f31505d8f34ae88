package knowledge

// Course is one catalog entry with its ordered lesson list.
type Course struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
}

// Lesson is one entry in a course outline.
type Lesson struct {
	Number int
	Title  string
	Link   string
}

// Chunk is one retrievable unit of course content.
type Chunk struct {
	CourseTitle  string
	LessonNumber *int // nil when the text precedes any lesson marker
	ChunkIndex   int
	Content      string
}

// ChunkMetadata is the provenance attached to one search hit.
type ChunkMetadata struct {
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// SearchResults is the structured outcome of one retrieval query.
//
// Three observable states, never conflated:
//   - Err != ""        → retrieval failed; the other fields are empty.
//   - len(Documents)==0 → the search ran and matched nothing.
//   - otherwise         → Documents, Metadata, and Distances are equal
//     length and positionally aligned.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
	Distances []float64
	Err       string
}

// IsError reports whether the backend signalled a structured failure.
func (r SearchResults) IsError() bool { return r.Err != "" }

// IsEmpty reports whether the search succeeded but matched nothing.
func (r SearchResults) IsEmpty() bool { return r.Err == "" && len(r.Documents) == 0 }
