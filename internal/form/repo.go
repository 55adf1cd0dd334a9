package form

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNotPublished      = errors.New("form is not published")
	ErrInvalidDefinition = errors.New("invalid form definition")
)

// Store persists forms and their scored responses.
type Store interface {
	// PutForm creates or replaces a form. An empty ID is assigned.
	PutForm(ctx context.Context, f Form) (Form, error)
	GetForm(ctx context.Context, id string) (Form, error)
	ListForms(ctx context.Context, opts ListOpts) ([]Summary, error)
	// UpdateForm replaces an existing form and fails with ErrNotFound otherwise.
	UpdateForm(ctx context.Context, f Form) (Form, error)
	DeleteForm(ctx context.Context, id string) error

	SaveResponse(ctx context.Context, r Response) (Response, error)
	GetResponse(ctx context.Context, id string) (Response, error)
	ListResponses(ctx context.Context, formID string, opts ListOpts) ([]Response, error)
}

func summarize(f Form) Summary {
	return Summary{
		ID:        f.ID,
		Title:     f.Definition.Title,
		OwnerID:   f.OwnerID,
		Published: f.Published,
		QuizType:  f.Definition.QuizType,
		UpdatedAt: f.UpdatedAt,
	}
}

func clampPage(opts ListOpts) (limit, offset int) {
	limit, offset = opts.Limit, opts.Offset
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
