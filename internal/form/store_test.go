package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptform/promptform/internal/db"
)

// tick returns a clock that advances one second per call so list ordering
// is deterministic.
func tick() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func sampleForm(owner, title string) Form {
	return Form{
		OwnerID: owner,
		Definition: Definition{
			Title:    title,
			IsQuiz:   true,
			QuizType: QuizKnowledge,
			Fields: []Field{
				{Name: "q1", Type: FieldRadio, Options: []string{"A", "B"}, CorrectAnswer: Text("A"), Points: Num(2)},
				{Name: "q2", Type: FieldCheckbox, Options: []string{"x", "y"}, CorrectAnswer: List("x", "y")},
			},
		},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	a, err := s.PutForm(ctx, sampleForm("alice", "Capital Cities"))
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	b, err := s.PutForm(ctx, sampleForm("bob", "Personality check"))
	require.NoError(t, err)

	got, err := s.GetForm(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, "Capital Cities", got.Definition.Title)
	require.Len(t, got.Definition.Fields, 2)
	assert.Equal(t, "A", got.Definition.Fields[0].CorrectAnswer.String())
	assert.Equal(t, []string{"x", "y"}, got.Definition.Fields[1].CorrectAnswer.Values())
	assert.Equal(t, 2.0, got.Definition.Fields[0].PointsOr(1))

	_, err = s.GetForm(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := s.ListForms(ctx, ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "most recently updated first")

	mine, err := s.ListForms(ctx, ListOpts{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].ID)

	found, err := s.ListForms(ctx, ListOpts{Q: "PERSONAL"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.ID, found[0].ID)

	paged, err := s.ListForms(ctx, ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, a.ID, paged[0].ID)

	a.Published = true
	a.Definition.Title = "Capitals"
	upd, err := s.UpdateForm(ctx, a)
	require.NoError(t, err)
	assert.True(t, upd.Published)
	assert.Equal(t, got.CreatedAt, upd.CreatedAt)
	assert.True(t, upd.UpdatedAt.After(got.UpdatedAt))

	_, err = s.UpdateForm(ctx, Form{ID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))

	outcome := "x"
	r1, err := s.SaveResponse(ctx, Response{FormID: a.ID, Payload: Payload{"q1": "A"}, Result: Result{Type: ResultKnowledge, Score: 2, MaxScore: 3}})
	require.NoError(t, err)
	require.NotEmpty(t, r1.ID)
	r2, err := s.SaveResponse(ctx, Response{FormID: a.ID, Payload: Payload{"q2": []any{"x"}}, Result: Result{Type: ResultOutcome, OutcomeID: &outcome, Totals: map[string]float64{"x": 1}}})
	require.NoError(t, err)

	_, err = s.SaveResponse(ctx, Response{FormID: "missing"})
	assert.True(t, errors.Is(err, ErrNotFound))

	gr, err := s.GetResponse(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", gr.Payload["q1"])
	assert.Equal(t, 2.0, gr.Result.Score)
	assert.Equal(t, ResultKnowledge, gr.Result.Type)

	list, err := s.ListResponses(ctx, a.ID, ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID)
	require.NotNil(t, list[0].Result.OutcomeID)
	assert.Equal(t, "x", *list[0].Result.OutcomeID)

	none, err := s.ListResponses(ctx, b.ID, ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.DeleteForm(ctx, a.ID))
	_, err = s.GetResponse(ctx, r1.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "responses go with their form")
	assert.True(t, errors.Is(s.DeleteForm(ctx, a.ID), ErrNotFound))
}

func TestMemoryStore(t *testing.T) {
	s := NewInMemoryStore().(*memoryStore)
	s.now = tick()
	exerciseStore(t, s)
}

func TestSQLStoreSQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	s := NewSQLStore(conn, string(db.DriverSQLite))
	s.now = tick()
	exerciseStore(t, s)
}

func TestSQLStoreCorruptResponseRows(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	s := NewSQLStore(conn, string(db.DriverSQLite))

	f, err := s.PutForm(ctx, sampleForm("ana", "Corrupt"))
	require.NoError(t, err)
	saved, err := s.SaveResponse(ctx, Response{FormID: f.ID, Payload: Payload{"q1": "A"}, Result: Result{Type: ResultKnowledge}})
	require.NoError(t, err)

	_, err = conn.ExecContext(ctx, `UPDATE responses SET payload_json='{' WHERE id=$1`, saved.ID)
	require.NoError(t, err)
	_, err = s.GetResponse(ctx, saved.ID)
	assert.ErrorContains(t, err, "decode payload")
	_, err = s.ListResponses(ctx, f.ID, ListOpts{})
	assert.ErrorContains(t, err, "decode payload")

	_, err = conn.ExecContext(ctx, `UPDATE responses SET payload_json='{}', result_json='nope' WHERE id=$1`, saved.ID)
	require.NoError(t, err)
	_, err = s.GetResponse(ctx, saved.ID)
	assert.ErrorContains(t, err, "decode result")
}

func TestClampPage(t *testing.T) {
	l, o := clampPage(ListOpts{})
	assert.Equal(t, 50, l)
	assert.Equal(t, 0, o)

	l, o = clampPage(ListOpts{Limit: 500, Offset: -3})
	assert.Equal(t, 50, l)
	assert.Equal(t, 0, o)

	l, o = clampPage(ListOpts{Limit: 10, Offset: 20})
	assert.Equal(t, 10, l)
	assert.Equal(t, 20, o)
}

func TestPublicStripsAnswerKeys(t *testing.T) {
	f := sampleForm("alice", "quiz")
	f.Definition.Fields[0].AnswerPattern = "^a$"
	f.Definition.Fields[0].Scoring = []ScoringRule{{Option: "A", OutcomeID: "x", Points: Num(1)}}

	pub := f.Public()
	for _, fld := range pub.Definition.Fields {
		assert.True(t, fld.CorrectAnswer.IsZero())
		assert.Empty(t, fld.AnswerPattern)
		assert.Nil(t, fld.Scoring)
	}
	assert.Equal(t, "A", f.Definition.Fields[0].CorrectAnswer.String(), "original untouched")
}
