package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hku-span/span2030/internal/curriculum"
	"github.com/hku-span/span2030/internal/exercise"
	"github.com/hku-span/span2030/internal/session"
)

type layoutData struct {
	Course curriculum.Course
	View   View
}

type topicData struct {
	layoutData
	Page      curriculum.Page
	PartTitle string
	Exercises []blockView
}

type errorData struct {
	layoutData
	Status  int
	Message string
}

// blockView is an exercise block with the visitor's saved state.
type blockView struct {
	Block     exercise.Block
	Fields    []fieldView
	Checked   bool
	Correct   int
	Total     int
	CheckPath string
	ResetPath string
}

type fieldView struct {
	Field  exercise.Field
	Value  string
	Result exercise.Result
}

func (s *Server) layout(v View) layoutData {
	return layoutData{Course: s.catalog.Course(), View: v}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderer.Render(w, http.StatusOK, "home.html", s.layout(HomeView()))
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("id")

	page, err := s.catalog.Page(topicID, r.URL.Query().Get("tab"))
	if errors.Is(err, curriculum.ErrTopicNotFound) {
		s.renderError(w, http.StatusNotFound, "No encontramos este tema.")
		return
	}
	if err != nil {
		slog.Error("resolve topic page", "topic_id", topicID, "error", err)
		s.renderError(w, http.StatusInternalServerError, "Se produjo un error inesperado.")
		return
	}

	sid := session.FromContext(r.Context())
	views := make([]blockView, 0, len(page.Section.Exercises))
	for _, b := range page.Section.Exercises {
		state, err := session.Load(r.Context(), s.store, sid, b.ID)
		if err != nil {
			slog.Error("load exercise state", "block_id", b.ID, "error", err)
			s.renderError(w, http.StatusInternalServerError, "No pudimos recuperar tus respuestas.")
			return
		}
		views = append(views, s.blockView(b, state))
	}

	s.renderer.Render(w, http.StatusOK, "topic.html", topicData{
		layoutData: s.layout(TopicView(topicID)),
		Page:       page,
		PartTitle:  s.partTitle(page.Topic.PartID),
		Exercises:  views,
	})
}

func (s *Server) blockView(b exercise.Block, state exercise.State) blockView {
	v := s.validator(b, state)
	correct, total := v.Score()

	fields := make([]fieldView, 0, len(b.Fields))
	for _, f := range b.Fields {
		fields = append(fields, fieldView{
			Field:  f,
			Value:  state.Answers[f.ID],
			Result: state.Result(f.ID),
		})
	}

	return blockView{
		Block:     b,
		Fields:    fields,
		Checked:   state.Checked(),
		Correct:   correct,
		Total:     total,
		CheckPath: exercisePath(b, "comprobar"),
		ResetPath: exercisePath(b, "reiniciar"),
	}
}

func (s *Server) partTitle(partID string) string {
	for _, p := range s.catalog.Course().Parts {
		if p.ID == partID {
			return p.Title
		}
	}
	return ""
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, http.StatusNotFound, "La página que buscas no existe.")
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.renderer.Render(w, status, "error.html", errorData{
		layoutData: s.layout(TopicView("")),
		Status:     status,
		Message:    message,
	})
}
