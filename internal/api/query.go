package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coursewise/coursewise/internal/tools"
)

// maxQueryBytes bounds the request body size for the query endpoint.
const maxQueryBytes = 64 * 1024

// Assistant is the query surface the handlers depend on.
type Assistant interface {
	Query(ctx context.Context, text, sessionID string) (answer string, sources []tools.Citation, sid string)
	CourseAnalytics(ctx context.Context) (int, []string, error)
}

// queryHandler serves the question answering endpoint.
type queryHandler struct {
	assistant Assistant
	logger    *slog.Logger
}

// queryRequest is the POST /api/v1/query body.
type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// queryResponse is the POST /api/v1/query response.
type queryResponse struct {
	Answer    string           `json:"answer"`
	Sources   []tools.Citation `json:"sources"`
	SessionID string           `json:"session_id"`
}

// answer handles POST /api/v1/query.
func (h *queryHandler) answer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBytes)

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "empty_query", "query must not be empty")
		return
	}

	answer, sources, sessionID := h.assistant.Query(r.Context(), req.Query, req.SessionID)

	if sources == nil {
		// Keep the JSON field an array rather than null.
		sources = []tools.Citation{}
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

// coursesHandler serves the course statistics endpoint.
type coursesHandler struct {
	assistant Assistant
	logger    *slog.Logger
}

// coursesResponse is the GET /api/v1/courses response.
type coursesResponse struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// stats handles GET /api/v1/courses.
func (h *coursesHandler) stats(w http.ResponseWriter, r *http.Request) {
	count, titles, err := h.assistant.CourseAnalytics(r.Context())
	if err != nil {
		h.logger.Error("course analytics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "analytics_failed", "failed to load course statistics")
		return
	}

	if titles == nil {
		titles = []string{}
	}

	writeJSON(w, http.StatusOK, coursesResponse{
		TotalCourses: count,
		CourseTitles: titles,
	})
}
