package grading

import (
	"io"
	"log/slog"
	"strings"

	"github.com/promptform/promptform/internal/form"
)

// Engine scores submissions against form definitions. It holds no state
// besides its logger and is safe for concurrent use.
type Engine struct {
	log *slog.Logger
}

// Engine options

type Option func(*Engine)

// WithLogger routes the engine's debug traces to l.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, o := range opts {
		o(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Calculate scores sub with a silent default engine.
func Calculate(def form.Definition, sub form.Payload) form.Result {
	return defaultEngine.Calculate(def, sub)
}

// Calculate picks knowledge or outcome scoring for def and runs it. It never
// fails: a form without any scoring configuration yields a zero knowledge
// result.
func (e *Engine) Calculate(def form.Definition, sub form.Payload) form.Result {
	if sub == nil {
		sub = form.Payload{}
	}
	switch Mode(def) {
	case form.QuizOutcome:
		return e.calculateOutcome(def, sub)
	case form.QuizKnowledge:
		return e.calculateKnowledge(def, sub)
	default:
		return form.Result{Type: form.ResultKnowledge}
	}
}

// Knowledge scores sub as a knowledge quiz regardless of form metadata.
func (e *Engine) Knowledge(def form.Definition, sub form.Payload) form.Result {
	return e.calculateKnowledge(def, sub)
}

// Outcome scores sub as an outcome quiz regardless of form metadata.
func (e *Engine) Outcome(def form.Definition, sub form.Payload) form.Result {
	return e.calculateOutcome(def, sub)
}

// Mode reports how def is scored. Explicit quizType wins; legacy forms are
// treated as outcome quizzes when they carry scoring rules or explicit
// outcome ids, and as knowledge quizzes when flagged isQuiz. The empty
// QuizType means "not scored".
func Mode(def form.Definition) form.QuizType {
	switch def.QuizType {
	case form.QuizOutcome, form.QuizKnowledge:
		return def.QuizType
	}
	for _, f := range def.Fields {
		if len(f.Scoring) > 0 {
			return form.QuizOutcome
		}
	}
	for _, p := range def.ResultPages {
		if strings.TrimSpace(p.OutcomeID) != "" {
			return form.QuizOutcome
		}
	}
	if def.IsQuiz {
		return form.QuizKnowledge
	}
	return ""
}

// MaxScore is the best score def can award under its scoring mode.
func MaxScore(def form.Definition) float64 {
	return Calculate(def, form.Payload{}).MaxScore
}
