package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/promptform/promptform/internal/form"
	"github.com/promptform/promptform/internal/grading"
	"github.com/promptform/promptform/internal/submission"
)

// POST /forms/{formID}/score  body: payload map; nothing is stored
func ScorePreviewHandler(store form.Store, svc *submission.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		var payload form.Payload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.Preview(r.Context(), f.ID, payload)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, submitResp{Result: res, Page: resultPage(f.Definition, res)})
	}
}

// GET /forms/{formID}/responses?limit=&offset=
func ListResponsesHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		list, err := store.ListResponses(r.Context(), f.ID, form.ListOpts{
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

type rangeReview struct {
	MaxScore  float64             `json:"maxScore"`
	Report    grading.RangeReport `json:"report"`
	Suggested []grading.Range     `json:"suggested"`
	Note      string              `json:"note,omitempty"`
}

func review(def form.Definition) rangeReview {
	top := grading.MaxScore(def)
	out := rangeReview{
		MaxScore:  top,
		Report:    grading.ValidateOutcomeRanges(def.ResultPages, top),
		Suggested: []grading.Range{},
		Note:      grading.CrowdedNote(len(def.ResultPages), top),
	}
	if len(def.ResultPages) > 0 {
		out.Suggested = grading.DistributeEvenly(top, len(def.ResultPages))
	}
	return out
}

// GET /forms/{formID}/outcomes/review
func ReviewOutcomesHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, review(f.Definition))
	}
}

type redistributeResp struct {
	form.Form
	Note string `json:"note,omitempty"`
}

// POST /forms/{formID}/outcomes/redistribute
func RedistributeOutcomesHandler(store form.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := loadOwned(r, store)
		if err != nil {
			writeErr(w, err)
			return
		}
		top := grading.MaxScore(f.Definition)
		f.Definition.ResultPages = grading.RedistributePages(f.Definition.ResultPages, top)
		out, err := store.UpdateForm(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, redistributeResp{Form: out, Note: grading.CrowdedNote(len(out.Definition.ResultPages), top)})
	}
}

type validateReq struct {
	ResultPages []form.OutcomePage `json:"resultPages"`
	MaxScore    form.Number        `json:"maxScore"`
	// Definition, when given, supplies both pages and the computed maximum.
	Definition *form.Definition `json:"definition,omitempty"`
}

// POST /outcomes/validate
func ValidateOutcomesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateReq
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Definition != nil {
			writeJSON(w, http.StatusOK, review(*req.Definition))
			return
		}
		writeJSON(w, http.StatusOK, grading.ValidateOutcomeRanges(req.ResultPages, req.MaxScore.Or(0)))
	}
}

// POST /outcomes/distribute  body: {"maxScore": n, "count": k}
func DistributeOutcomesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxScore form.Number `json:"maxScore"`
			Count    int         `json:"count"`
		}
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Count <= 0 {
			http.Error(w, "count must be positive", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, grading.DistributeEvenly(req.MaxScore.Or(0), req.Count))
	}
}
