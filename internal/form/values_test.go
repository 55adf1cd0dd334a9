package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberDecodesLeniently(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		valid bool
	}{
		{`3`, 3, true},
		{`"2.5"`, 2.5, true},
		{`" 4 "`, 4, true},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`{"x":1}`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range cases {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(tc.in), &n), tc.in)
		assert.Equal(t, tc.valid, n.Valid, tc.in)
		assert.Equal(t, tc.want, n.Or(0), tc.in)
	}
}

func TestFieldWithBadPointsStillDecodes(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`{"name":"q","type":"radio","points":"lots","min":"1"}`), &f))
	assert.Equal(t, 1.0, f.PointsOr(1))
	assert.Equal(t, 1.0, f.Min.Or(0))

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "points")
}

func TestAnswerShapes(t *testing.T) {
	var a Answer
	require.NoError(t, json.Unmarshal([]byte(`"Paris"`), &a))
	assert.False(t, a.IsList())
	assert.Equal(t, "Paris", a.String())

	require.NoError(t, json.Unmarshal([]byte(`["a", 2, null]`), &a))
	assert.True(t, a.IsList())
	assert.Equal(t, []string{"a", "2"}, a.Values())
	assert.Equal(t, "", a.String())

	require.NoError(t, json.Unmarshal([]byte(`{"weird":true}`), &a))
	assert.True(t, a.IsZero())

	b, err := json.Marshal(List())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))
}

func TestColumnShapes(t *testing.T) {
	var cols []Column
	require.NoError(t, json.Unmarshal([]byte(`["Never", {"label":"Often","points":"3"}, 5]`), &cols))
	require.Len(t, cols, 3)
	assert.Equal(t, "Never", cols[0].Label)
	assert.False(t, cols[0].Points.Valid)
	assert.Equal(t, "Often", cols[1].Label)
	assert.Equal(t, 3.0, cols[1].Points.Or(0))
	assert.Equal(t, "5", cols[2].Label)

	b, err := json.Marshal(cols[:2])
	require.NoError(t, err)
	assert.JSONEq(t, `["Never", {"label":"Often","points":3}]`, string(b))
}

func TestResultJSON(t *testing.T) {
	b, err := json.Marshal(Result{Type: ResultKnowledge, Score: 2, MaxScore: 3, Totals: map[string]float64{"x": 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"KNOWLEDGE","score":2,"maxScore":3}`, string(b))

	b, err = json.Marshal(Result{Type: ResultOutcome})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"OUTCOME","outcomeId":null,"outcomeTitle":null,"totals":{},"score":0,"maxScore":0}`, string(b))

	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"score":1}`), &r))
	assert.Equal(t, ResultKnowledge, r.Type)
}
