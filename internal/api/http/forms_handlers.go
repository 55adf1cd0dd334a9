package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/promptform/promptform/internal/auth/middleware"
	"github.com/promptform/promptform/internal/form"
	"github.com/promptform/promptform/internal/generator"
	"github.com/promptform/promptform/internal/rbac"
	"github.com/promptform/promptform/internal/submission"
)

// loadOwned fetches the form named in the URL. Forms owned by someone else
// are reported as missing unless the caller may manage all forms.
func loadOwned(r *http.Request, store form.Store) (form.Form, error) {
	return ownedForm(r, store, strings.TrimSpace(chi.URLParam(r, "formID")))
}

func ownedForm(r *http.Request, store form.Store, id string) (form.Form, error) {
	f, err := store.GetForm(r.Context(), id)
	if err != nil {
		return form.Form{}, err
	}
	if !rbac.CanManage(r.Context(), authmw.SubjectFromContext(r.Context()), f.OwnerID) {
		return form.Form{}, fmt.Errorf("form %q: %w", id, form.ErrNotFound)
	}
	return f, nil
}

// POST /forms  body: form definition
func CreateFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := readBody(r)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		def, err := form.ParseDefinition(raw)
		if err != nil {
			writeErr(w, err)
			return
		}
		f, err := store.PutForm(r.Context(), form.Form{
			OwnerID:    authmw.SubjectFromContext(r.Context()),
			Definition: def,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	}
}

type generateReq struct {
	Prompt string `json:"prompt"`
	FormID string `json:"formId,omitempty"` // refactor an existing form
}

// POST /forms/generate
func GenerateFormHandler(store form.Store, gen *generator.Client, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateReq
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			http.Error(w, "prompt required", http.StatusBadRequest)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		target := form.Form{OwnerID: sub}
		genReq := generator.Request{Prompt: req.Prompt}
		if id := strings.TrimSpace(req.FormID); id != "" {
			existing, err := ownedForm(r, store, id)
			if err != nil {
				writeErr(w, err)
				return
			}
			target = existing
			genReq.Current = &existing.Definition
		}

		def, err := gen.Generate(r.Context(), genReq)
		if err != nil {
			log.Warn("form generation failed", "form_id", target.ID, "error", err)
			if errors.Is(err, generator.ErrNotConfigured) {
				writeErr(w, err)
				return
			}
			http.Error(w, "generator: "+err.Error(), http.StatusBadGateway)
			return
		}
		target.Definition = def
		status := http.StatusCreated
		var out form.Form
		if target.ID != "" {
			status = http.StatusOK
			out, err = store.UpdateForm(r.Context(), target)
		} else {
			out, err = store.PutForm(r.Context(), target)
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, status, out)
	}
}

// GET /forms?q=&limit=&offset=
func ListFormsHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := form.ListOpts{
			Q:       strings.TrimSpace(r.URL.Query().Get("q")),
			OwnerID: rbac.OwnerScope(r.Context(), authmw.SubjectFromContext(r.Context())),
			Limit:   parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:  parseIntDefault(r.URL.Query().Get("offset"), 0),
		}
		list, err := store.ListForms(r.Context(), opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /forms/{formID}
func GetFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	}
}

// PUT /forms/{formID}  body: form definition
func UpdateFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		raw, err := readBody(r)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		def, err := form.ParseDefinition(raw)
		if err != nil {
			writeErr(w, err)
			return
		}
		f.Definition = def
		out, err := store.UpdateForm(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /forms/{formID}
func DeleteFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := store.DeleteForm(r.Context(), f.ID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /forms/{formID}/publish  body: {"published": bool}, defaults to true
func PublishFormHandler(store form.Store, svc *submission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		req := struct {
			Published *bool `json:"published"`
		}{}
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		publish := req.Published == nil || *req.Published
		out, err := svc.Publish(r.Context(), f.ID, publish)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
