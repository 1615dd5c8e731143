package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hku-span/span2030/internal/exercise"
	"github.com/hku-span/span2030/internal/progress"
	"github.com/hku-span/span2030/internal/session"
)

func exercisePath(b exercise.Block, action string) string {
	return TopicView(b.TopicID).Path() + "/ejercicios/" + url.PathEscape(b.ID) + "/" + action
}

// returnPath is the topic tab showing b, anchored on the block.
func returnPath(b exercise.Block) string {
	return TabPath(b.TopicID, b.Tab) + "#" + b.ID
}

func (s *Server) validator(b exercise.Block, state exercise.State) *exercise.Validator {
	return exercise.NewValidator(b.Key(),
		exercise.WithNormalizer(s.normalizer),
		exercise.WithState(state),
	)
}

// topicBlock finds a block that belongs to topicID.
func (s *Server) topicBlock(topicID, blockID string) (exercise.Block, bool) {
	b, ok := s.catalog.Block(blockID)
	if !ok || b.TopicID != topicID {
		return exercise.Block{}, false
	}
	return b, true
}

// errInvalidChoice is returned for choice answers that select no option.
var errInvalidChoice = errors.New("value is not one of the options")

// choiceAnswers rewrites choice values to the option they select so the
// stored answer matches what the form renders. An empty value clears the field.
func choiceAnswers(b exercise.Block, answers map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(answers))
	for id, value := range answers {
		f, ok := b.Field(id)
		if ok && f.Kind == exercise.KindChoice && value != "" {
			opt, ok := f.Option(value)
			if !ok {
				return nil, fmt.Errorf("field %s: %w", id, errInvalidChoice)
			}
			value = opt
		}
		out[id] = value
	}
	return out, nil
}

// setFields applies answers to the block's saved state and saves it.
func (s *Server) setFields(ctx context.Context, sid string, b exercise.Block, answers map[string]string) (*exercise.Validator, error) {
	answers, err := choiceAnswers(b, answers)
	if err != nil {
		return nil, err
	}
	state, err := session.Load(ctx, s.store, sid, b.ID)
	if err != nil {
		return nil, err
	}
	v := s.validator(b, state)
	for id, value := range answers {
		v.SetField(id, value)
	}
	if err := s.store.Save(ctx, sid, b.ID, v.State()); err != nil {
		return nil, err
	}
	return v, nil
}

// check applies answers, grades every field and saves the result.
func (s *Server) check(ctx context.Context, sid string, b exercise.Block, answers map[string]string) (*exercise.Validator, error) {
	answers, err := choiceAnswers(b, answers)
	if err != nil {
		return nil, err
	}
	state, err := session.Load(ctx, s.store, sid, b.ID)
	if err != nil {
		return nil, err
	}
	v := s.validator(b, state)
	for id, value := range answers {
		v.SetField(id, value)
	}
	v.Check()
	if err := s.store.Save(ctx, sid, b.ID, v.State()); err != nil {
		return nil, err
	}

	correct, total := v.Score()
	s.logEvent(progress.Checked(sid, b.TopicID, b.ID, correct, total))
	return v, nil
}

// reset clears the block's answers and results.
func (s *Server) reset(ctx context.Context, sid string, b exercise.Block) (*exercise.Validator, error) {
	if err := s.store.Delete(ctx, sid, b.ID); err != nil {
		return nil, err
	}
	s.logEvent(progress.Reset(sid, b.TopicID, b.ID))
	return s.validator(b, exercise.NewState()), nil
}

func (s *Server) logEvent(ev progress.Event) {
	if err := s.events.LogEvent(ev); err != nil {
		slog.Warn("event not logged", "type", ev.EventType, "exercise_id", ev.ExerciseID, "error", err)
	}
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	b, ok := s.topicBlock(r.PathValue("id"), r.PathValue("block"))
	if !ok {
		s.renderError(w, http.StatusNotFound, "No encontramos este ejercicio.")
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "El formulario no es válido.")
		return
	}

	answers := make(map[string]string, len(b.Fields))
	for _, f := range b.Fields {
		if r.PostForm.Has(f.ID) {
			answers[f.ID] = r.PostForm.Get(f.ID)
		}
	}

	_, err := s.check(r.Context(), session.FromContext(r.Context()), b, answers)
	if errors.Is(err, errInvalidChoice) {
		s.renderError(w, http.StatusBadRequest, "El formulario no es válido.")
		return
	}
	if err != nil {
		slog.Error("check exercise", "block_id", b.ID, "error", err)
		s.renderError(w, http.StatusInternalServerError, "No pudimos guardar tus respuestas.")
		return
	}
	http.Redirect(w, r, returnPath(b), http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	b, ok := s.topicBlock(r.PathValue("id"), r.PathValue("block"))
	if !ok {
		s.renderError(w, http.StatusNotFound, "No encontramos este ejercicio.")
		return
	}

	if _, err := s.reset(r.Context(), session.FromContext(r.Context()), b); err != nil {
		slog.Error("reset exercise", "block_id", b.ID, "error", err)
		s.renderError(w, http.StatusInternalServerError, "No pudimos reiniciar el ejercicio.")
		return
	}
	http.Redirect(w, r, returnPath(b), http.StatusSeeOther)
}
