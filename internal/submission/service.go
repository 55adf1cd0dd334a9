// Package submission scores respondent payloads against stored forms and
// records the results.
package submission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promptform/promptform/internal/form"
	"github.com/promptform/promptform/internal/grading"
	syncx "github.com/promptform/promptform/internal/sync"
)

type Service struct {
	store  form.Store
	engine *grading.Engine
	events syncx.Appender
	log    *slog.Logger
	now    func() time.Time
}

// NewService wires a store and engine. events may be nil.
func NewService(store form.Store, engine *grading.Engine, events syncx.Appender, log *slog.Logger) *Service {
	if engine == nil {
		engine = grading.NewEngine()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, engine: engine, events: events, log: log, now: time.Now}
}

// Submit scores payload against a published form and persists the response.
func (s *Service) Submit(ctx context.Context, formID string, payload form.Payload) (form.Response, error) {
	f, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return form.Response{}, err
	}
	if !f.Published {
		return form.Response{}, fmt.Errorf("form %q: %w", formID, form.ErrNotPublished)
	}
	if payload == nil {
		payload = form.Payload{}
	}

	res := s.engine.Calculate(f.Definition, payload)
	saved, err := s.store.SaveResponse(ctx, form.Response{
		FormID:      f.ID,
		Payload:     payload,
		Result:      res,
		SubmittedAt: s.now().UTC(),
	})
	if err != nil {
		return form.Response{}, fmt.Errorf("save response: %w", err)
	}

	s.log.Info("response submitted",
		"form_id", f.ID, "response_id", saved.ID,
		"type", res.Type, "score", res.Score, "max_score", res.MaxScore)
	s.emit(ctx, syncx.EventResponseSubmitted, saved.ID, map[string]any{
		"formId": f.ID,
		"result": res,
	})
	return saved, nil
}

// Preview scores payload without saving it. Unpublished forms are allowed
// so editors can try a draft.
func (s *Service) Preview(ctx context.Context, formID string, payload form.Payload) (form.Result, error) {
	f, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return form.Result{}, err
	}
	return s.engine.Calculate(f.Definition, payload), nil
}

// Publish flips the published flag and records a FormPublished event when
// the form goes live.
func (s *Service) Publish(ctx context.Context, formID string, published bool) (form.Form, error) {
	f, err := s.store.GetForm(ctx, formID)
	if err != nil {
		return form.Form{}, err
	}
	was := f.Published
	f.Published = published
	out, err := s.store.UpdateForm(ctx, f)
	if err != nil {
		return form.Form{}, err
	}
	if published && !was {
		s.emit(ctx, syncx.EventFormPublished, out.ID, map[string]any{
			"ownerId": out.OwnerID,
			"title":   out.Definition.Title,
		})
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	e, err := syncx.NewEvent(typ, key, data)
	if err == nil {
		err = s.events.Append(ctx, e)
	}
	if err != nil {
		s.log.Warn("event append failed", "type", typ, "key", key, "error", err)
	}
}
