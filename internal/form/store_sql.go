package form

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now}
}

func (s *SQLStore) PutForm(ctx context.Context, f Form) (Form, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	dj, err := json.Marshal(f.Definition)
	if err != nil {
		return Form{}, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	_, err = s.db.ExecContext(ctx, `INSERT INTO forms (id,owner_id,title,published,quiz_type,definition_json,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
		ON CONFLICT (id) DO UPDATE SET owner_id=EXCLUDED.owner_id, title=EXCLUDED.title, published=EXCLUDED.published,
			quiz_type=EXCLUDED.quiz_type, definition_json=EXCLUDED.definition_json, updated_at=EXCLUDED.updated_at`,
		f.ID, f.OwnerID, f.Definition.Title, f.Published, string(f.Definition.QuizType), string(dj), now.UnixMilli())
	if err != nil {
		return Form{}, fmt.Errorf("put form: %w", err)
	}
	return s.GetForm(ctx, f.ID)
}

func (s *SQLStore) GetForm(ctx context.Context, id string) (Form, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,owner_id,published,definition_json,created_at,updated_at FROM forms WHERE id=$1`, id)
	var (
		f                Form
		djson            string
		created, updated int64
	)
	if err := row.Scan(&f.ID, &f.OwnerID, &f.Published, &djson, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Form{}, fmt.Errorf("form %q: %w", id, ErrNotFound)
		}
		return Form{}, err
	}
	if err := json.Unmarshal([]byte(djson), &f.Definition); err != nil {
		return Form{}, fmt.Errorf("decode form %q: %w", id, err)
	}
	f.CreatedAt = time.UnixMilli(created).UTC()
	f.UpdatedAt = time.UnixMilli(updated).UTC()
	return f, nil
}

func (s *SQLStore) ListForms(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit, offset := clampPage(opts)
	var (
		where []string
		args  []any
	)
	if opts.OwnerID != "" {
		args = append(args, opts.OwnerID)
		where = append(where, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if q := strings.TrimSpace(opts.Q); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		where = append(where, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
	}
	query := `SELECT id,title,owner_id,published,quiz_type,updated_at FROM forms`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY updated_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sm      Summary
			qt      string
			updated int64
		)
		if err := rows.Scan(&sm.ID, &sm.Title, &sm.OwnerID, &sm.Published, &qt, &updated); err != nil {
			return nil, err
		}
		sm.QuizType = QuizType(qt)
		sm.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateForm(ctx context.Context, f Form) (Form, error) {
	if _, err := s.GetForm(ctx, f.ID); err != nil {
		return Form{}, err
	}
	return s.PutForm(ctx, f)
}

func (s *SQLStore) DeleteForm(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE form_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM forms WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("form %q: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (s *SQLStore) SaveResponse(ctx context.Context, r Response) (Response, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM forms WHERE id=$1`, r.FormID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Response{}, fmt.Errorf("form %q: %w", r.FormID, ErrNotFound)
		}
		return Response{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = s.now()
	}
	r.SubmittedAt = r.SubmittedAt.UTC().Truncate(time.Millisecond)
	pj, err := json.Marshal(r.Payload)
	if err != nil {
		return Response{}, err
	}
	rj, err := json.Marshal(r.Result)
	if err != nil {
		return Response{}, err
	}
	outcome := ""
	if r.Result.OutcomeID != nil {
		outcome = *r.Result.OutcomeID
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO responses (id,form_id,payload_json,result_json,score,max_score,outcome_id,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.FormID, string(pj), string(rj), r.Result.Score, r.Result.MaxScore, outcome, r.SubmittedAt.UnixMilli())
	if err != nil {
		return Response{}, fmt.Errorf("save response: %w", err)
	}
	return r, nil
}

const responseCols = `id,form_id,payload_json,result_json,submitted_at`

type scanner interface{ Scan(dest ...any) error }

func scanResponse(sc scanner) (Response, error) {
	var (
		r         Response
		pj, rj    string
		submitted int64
	)
	if err := sc.Scan(&r.ID, &r.FormID, &pj, &rj, &submitted); err != nil {
		return Response{}, err
	}
	if err := json.Unmarshal([]byte(pj), &r.Payload); err != nil {
		return Response{}, fmt.Errorf("decode payload of %q: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(rj), &r.Result); err != nil {
		return Response{}, fmt.Errorf("decode result of %q: %w", r.ID, err)
	}
	r.SubmittedAt = time.UnixMilli(submitted).UTC()
	return r, nil
}

func (s *SQLStore) GetResponse(ctx context.Context, id string) (Response, error) {
	r, err := scanResponse(s.db.QueryRowContext(ctx, `SELECT `+responseCols+` FROM responses WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Response{}, fmt.Errorf("response %q: %w", id, ErrNotFound)
	}
	return r, err
}

func (s *SQLStore) ListResponses(ctx context.Context, formID string, opts ListOpts) ([]Response, error) {
	limit, offset := clampPage(opts)
	rows, err := s.db.QueryContext(ctx, `SELECT `+responseCols+` FROM responses WHERE form_id=$1
		ORDER BY submitted_at DESC, id ASC LIMIT $2 OFFSET $3`, formID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()
	out := []Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
