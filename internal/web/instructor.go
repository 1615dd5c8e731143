package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/hku-span/span2030/internal/export"
	"github.com/hku-span/span2030/internal/progress"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// summarizer is implemented by event loggers that can aggregate activity.
type summarizer interface {
	Summaries(ctx context.Context, topicID string) ([]progress.Summary, error)
}

// requireInstructor guards next with HTTP basic auth. Instructor routes do
// not exist when no password hash is configured.
func (s *Server) requireInstructor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.instructor.PasswordHash == "" {
			s.handleNotFound(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !s.validInstructor(user, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="span2030", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) validInstructor(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.instructor.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(s.instructor.PasswordHash), []byte(pass)) == nil
	return userOK && passOK
}

func (s *Server) handleAnswerKey(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteAnswerKey(&buf, s.catalog); err != nil {
		slog.Error("build answer key", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="span2030-clave.xlsx"`)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("id")
	if _, ok := s.catalog.Topic(topicID); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "topic not found")
		return
	}

	sum, ok := s.events.(summarizer)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "activity log is not enabled")
		return
	}

	summaries, err := sum.Summaries(r.Context(), topicID)
	if err != nil {
		slog.Error("summarize events", "topic_id", topicID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	if summaries == nil {
		summaries = []progress.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}
