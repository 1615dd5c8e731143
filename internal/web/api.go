package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hku-span/span2030/internal/exercise"
	"github.com/hku-span/span2030/internal/session"
)

const maxBodyBytes = 64 << 10

// apiError is the JSON error envelope.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// exerciseResponse describes a block and the caller's state for it. Accepted
// answers are never included.
type exerciseResponse struct {
	ID           string                     `json:"id"`
	TopicID      string                     `json:"topic_id"`
	Tab          string                     `json:"tab"`
	Title        string                     `json:"title"`
	Instructions string                     `json:"instructions,omitempty"`
	Fields       []exercise.Field           `json:"fields"`
	Answers      map[string]string          `json:"answers"`
	Results      map[string]exercise.Result `json:"results"`
	Checked      bool                       `json:"checked"`
	Correct      int                        `json:"correct"`
	Total        int                        `json:"total"`
}

type setFieldRequest struct {
	Value string `json:"value"`
}

type checkRequest struct {
	Answers map[string]string `json:"answers"`
}

func newExerciseResponse(b exercise.Block, v *exercise.Validator) exerciseResponse {
	state := v.State()
	correct, total := v.Score()
	return exerciseResponse{
		ID:           b.ID,
		TopicID:      b.TopicID,
		Tab:          b.Tab,
		Title:        b.Title,
		Instructions: b.Instructions,
		Fields:       b.Fields,
		Answers:      state.Answers,
		Results:      state.Results,
		Checked:      state.Checked(),
		Correct:      correct,
		Total:        total,
	}
}

func (s *Server) apiBlock(w http.ResponseWriter, r *http.Request) (exercise.Block, bool) {
	b, ok := s.catalog.Block(r.PathValue("block"))
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "exercise not found")
	}
	return b, ok
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	b, ok := s.apiBlock(w, r)
	if !ok {
		return
	}

	state, err := session.Load(r.Context(), s.store, session.FromContext(r.Context()), b.ID)
	if err != nil {
		s.internalError(w, "load exercise state", b, err)
		return
	}
	writeJSON(w, http.StatusOK, newExerciseResponse(b, s.validator(b, state)))
}

func (s *Server) handleAPISetField(w http.ResponseWriter, r *http.Request) {
	b, ok := s.apiBlock(w, r)
	if !ok {
		return
	}
	fieldID := r.PathValue("field")
	if _, ok := b.Field(fieldID); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "field not found")
		return
	}

	var req setFieldRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	v, err := s.setFields(r.Context(), session.FromContext(r.Context()), b, map[string]string{fieldID: req.Value})
	if errors.Is(err, errInvalidChoice) {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err != nil {
		s.internalError(w, "set exercise field", b, err)
		return
	}
	writeJSON(w, http.StatusOK, newExerciseResponse(b, v))
}

func (s *Server) handleAPICheck(w http.ResponseWriter, r *http.Request) {
	b, ok := s.apiBlock(w, r)
	if !ok {
		return
	}

	var req checkRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	for id := range req.Answers {
		if _, ok := b.Field(id); !ok {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "field not found: "+id)
			return
		}
	}

	v, err := s.check(r.Context(), session.FromContext(r.Context()), b, req.Answers)
	if errors.Is(err, errInvalidChoice) {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if err != nil {
		s.internalError(w, "check exercise", b, err)
		return
	}
	writeJSON(w, http.StatusOK, newExerciseResponse(b, v))
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	b, ok := s.apiBlock(w, r)
	if !ok {
		return
	}

	v, err := s.reset(r.Context(), session.FromContext(r.Context()), b)
	if err != nil {
		s.internalError(w, "reset exercise", b, err)
		return
	}
	writeJSON(w, http.StatusOK, newExerciseResponse(b, v))
}

func (s *Server) internalError(w http.ResponseWriter, msg string, b exercise.Block, err error) {
	slog.Error(msg, "block_id", b.ID, "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// decodeJSON reads a single JSON object from the body. An empty body is
// accepted only when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return errors.New("request body is empty")
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}
