package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/promptform/promptform/internal/form"
	"github.com/promptform/promptform/internal/grading"
	"github.com/promptform/promptform/internal/submission"
)

// GET /public/forms/{formID}
func GetPublicFormHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := store.GetForm(r.Context(), strings.TrimSpace(chi.URLParam(r, "formID")))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !f.Published {
			writeErr(w, form.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, f.Public())
	}
}

type submitResp struct {
	ResponseID string      `json:"responseId"`
	Result     form.Result `json:"result"`
	// Page is the result page to show: the winning outcome, or for
	// knowledge quizzes the page whose range holds the score.
	Page *form.OutcomePage `json:"page,omitempty"`
}

// POST /submit-response/{formID}  body: payload map
func SubmitResponseHandler(store form.Store, svc *submission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload form.Payload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		resp, err := svc.Submit(r.Context(), strings.TrimSpace(chi.URLParam(r, "formID")), payload)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := submitResp{ResponseID: resp.ID, Result: resp.Result}
		if f, err := store.GetForm(r.Context(), resp.FormID); err == nil {
			out.Page = resultPage(f.Definition, resp.Result)
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func resultPage(def form.Definition, res form.Result) *form.OutcomePage {
	if res.Type == form.ResultOutcome {
		if res.OutcomeID == nil {
			return nil
		}
		for _, p := range def.ResultPages {
			if grading.PageID(p) == *res.OutcomeID {
				return &p
			}
		}
		return nil
	}
	if p, ok := grading.PageForScore(def.ResultPages, res.Score); ok {
		return &p
	}
	return nil
}
