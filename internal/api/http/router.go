package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authmw "github.com/promptform/promptform/internal/auth/middleware"
	"github.com/promptform/promptform/internal/form"
	"github.com/promptform/promptform/internal/generator"
	"github.com/promptform/promptform/internal/rbac"
	"github.com/promptform/promptform/internal/submission"
)

// Deps is everything the router needs.
type Deps struct {
	Store       form.Store
	Submissions *submission.Service
	Generator   *generator.Client
	Auth        *authmw.AuthService
	Credentials authmw.Credentials
	Log         *slog.Logger

	CORSOrigins []string
	SubmitRate  float64
	SubmitBurst int

	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(d Deps) chi.Router {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Post("/auth/login", authmw.LoginHandler(d.Auth, d.Credentials))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	// Respondent surface
	submitLimiter := NewClientLimiter(d.SubmitRate, d.SubmitBurst)
	r.Get("/public/forms/{formID}", GetPublicFormHandler(d.Store))
	r.With(submitLimiter.Middleware).
		Post("/submit-response/{formID}", SubmitResponseHandler(d.Store, d.Submissions))

	// Editor surface (JWT → role in context → RBAC)
	generateLimiter := NewClientLimiter(d.SubmitRate, d.SubmitBurst)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require(rbac.PermFormCreate)).
			Post("/forms", CreateFormHandler(d.Store))
		pr.With(rbac.Require(rbac.PermFormCreate), generateLimiter.Middleware).
			Post("/forms/generate", GenerateFormHandler(d.Store, d.Generator, d.Log))
		pr.With(rbac.Require(rbac.PermFormView)).
			Get("/forms", ListFormsHandler(d.Store))

		pr.Route("/forms/{formID}", func(fr chi.Router) {
			fr.With(rbac.Require(rbac.PermFormView)).Get("/", GetFormHandler(d.Store))
			fr.With(rbac.Require(rbac.PermFormUpdate)).Put("/", UpdateFormHandler(d.Store))
			fr.With(rbac.Require(rbac.PermFormDelete)).Delete("/", DeleteFormHandler(d.Store))
			fr.With(rbac.Require(rbac.PermFormPublish)).Post("/publish", PublishFormHandler(d.Store, d.Submissions))
			fr.With(rbac.Require(rbac.PermFormView)).Post("/score", ScorePreviewHandler(d.Store, d.Submissions))
			fr.With(rbac.Require(rbac.PermResponseView)).Get("/responses", ListResponsesHandler(d.Store))
			fr.With(rbac.Require(rbac.PermFormView)).Get("/outcomes/review", ReviewOutcomesHandler(d.Store))
			fr.With(rbac.Require(rbac.PermFormUpdate)).Post("/outcomes/redistribute", RedistributeOutcomesHandler(d.Store))
		})

		pr.With(rbac.RequireAny(rbac.PermFormView, rbac.PermFormUpdate)).
			Post("/outcomes/validate", ValidateOutcomesHandler())
		pr.With(rbac.RequireAny(rbac.PermFormView, rbac.PermFormUpdate)).
			Post("/outcomes/distribute", DistributeOutcomesHandler())
	})
	return r
}
