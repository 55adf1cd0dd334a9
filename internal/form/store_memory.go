package form

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu        sync.RWMutex
	forms     map[string]Form
	responses map[string]Response
	now       func() time.Time
}

// NewInMemoryStore returns a process-local Store, used for tests and the
// "memory" driver.
func NewInMemoryStore() Store {
	return &memoryStore{
		forms:     map[string]Form{},
		responses: map[string]Response{},
		now:       time.Now,
	}
}

func (m *memoryStore) PutForm(_ context.Context, f Form) (Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if prev, ok := m.forms[f.ID]; ok {
		f.CreatedAt = prev.CreatedAt
	} else {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	m.forms[f.ID] = f
	return f, nil
}

func (m *memoryStore) GetForm(_ context.Context, id string) (Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.forms[id]
	if !ok {
		return Form{}, fmt.Errorf("form %q: %w", id, ErrNotFound)
	}
	return f, nil
}

func (m *memoryStore) ListForms(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	out := make([]Summary, 0, len(m.forms))
	for _, f := range m.forms {
		if opts.OwnerID != "" && f.OwnerID != opts.OwnerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(f.Definition.Title), q) {
			continue
		}
		out = append(out, summarize(f))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

func (m *memoryStore) UpdateForm(ctx context.Context, f Form) (Form, error) {
	m.mu.RLock()
	_, ok := m.forms[f.ID]
	m.mu.RUnlock()
	if !ok {
		return Form{}, fmt.Errorf("form %q: %w", f.ID, ErrNotFound)
	}
	return m.PutForm(ctx, f)
}

func (m *memoryStore) DeleteForm(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forms[id]; !ok {
		return fmt.Errorf("form %q: %w", id, ErrNotFound)
	}
	delete(m.forms, id)
	for rid, r := range m.responses {
		if r.FormID == id {
			delete(m.responses, rid)
		}
	}
	return nil
}

func (m *memoryStore) SaveResponse(_ context.Context, r Response) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.forms[r.FormID]; !ok {
		return Response{}, fmt.Errorf("form %q: %w", r.FormID, ErrNotFound)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = m.now().UTC()
	}
	m.responses[r.ID] = r
	return r, nil
}

func (m *memoryStore) GetResponse(_ context.Context, id string) (Response, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.responses[id]
	if !ok {
		return Response{}, fmt.Errorf("response %q: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *memoryStore) ListResponses(_ context.Context, formID string, opts ListOpts) ([]Response, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Response{}
	for _, r := range m.responses {
		if r.FormID == formID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

func page[T any](items []T, opts ListOpts) []T {
	limit, offset := clampPage(opts)
	if offset >= len(items) {
		return items[:0]
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}
