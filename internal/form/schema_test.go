package form

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinition(t *testing.T) {
	raw := `{
		"title": "Which pet?",
		"isQuiz": true,
		"quizType": "OUTCOME",
		"fields": [
			{"name": "q1", "type": "radio", "options": ["Walk", "Nap"],
			 "scoring": [{"option": "Walk", "outcomeId": "dog", "points": 2}]},
			{"name": "go", "type": "submit"}
		],
		"resultPages": [{"title": "Dog", "outcomeId": "dog", "scoreRange": {"from": 0, "to": 2}}]
	}`
	def, err := ParseDefinition([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, QuizOutcome, def.QuizType)
	require.Len(t, def.Fields, 2)
	require.Len(t, def.Fields[0].Scoring, 1)
	assert.Equal(t, 2.0, def.Fields[0].Scoring[0].Points.Or(0))
	require.Len(t, def.ResultPages, 1)
	assert.Equal(t, "dog", def.ResultPages[0].OutcomeID)
}

func TestParseDefinitionRejects(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"missing fields":  `{"title": "x"}`,
		"unknown type":    `{"title": "x", "fields": [{"name": "a", "type": "slider"}]}`,
		"bad quiz type":   `{"title": "x", "fields": [], "quizType": "PERSONALITY"}`,
		"duplicate names": `{"title": "x", "fields": [{"name": "a", "type": "text"}, {"name": "a", "type": "email"}]}`,
		"blank name":      `{"title": "x", "fields": [{"name": " ", "type": "text"}]}`,
		"rule without id": `{"title": "x", "fields": [{"name": "a", "type": "radio", "scoring": [{"option": "A"}]}]}`,
	}
	for name, raw := range cases {
		_, err := ParseDefinition([]byte(raw))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidDefinition), name)
	}
}

func TestParseDefinitionToleratesLooseNumbers(t *testing.T) {
	def, err := ParseDefinition([]byte(`{"title": "x", "fields": [{"name": "r", "type": "range", "min": "1", "max": "ten"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1.0, def.Fields[0].Min.Or(0))
	assert.False(t, def.Fields[0].Max.Valid)
}

func TestParseDefinitionNumericLabels(t *testing.T) {
	raw := `{
		"title": "Rate it",
		"quizType": "OUTCOME",
		"fields": [
			{"name": "stars", "type": "radio", "options": [1, 5, null],
			 "scoring": [{"option": 5, "outcomeId": "fan", "points": 3}, {"option": 1, "outcomeId": "critic"}]},
			{"name": "grid", "type": "radioGrid", "rows": [2024], "columns": [0, 1],
			 "scoring": [{"column": 1, "outcomeId": "fan"}]}
		]
	}`
	def, err := ParseDefinition([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, Labels{"1", "5"}, def.Fields[0].Options)
	assert.Equal(t, Label("5"), def.Fields[0].Scoring[0].Option)
	assert.Equal(t, Label("1"), def.Fields[0].Scoring[1].Option)
	assert.Equal(t, Labels{"2024"}, def.Fields[1].Rows)
	assert.Equal(t, Label("1"), def.Fields[1].Scoring[0].Column)
}

func TestLabelIgnoresComposites(t *testing.T) {
	var r ScoringRule
	require.NoError(t, json.Unmarshal([]byte(`{"option": {"x": 1}, "column": true, "outcomeId": "a"}`), &r))
	assert.Equal(t, Label(""), r.Option)
	assert.Equal(t, Label("true"), r.Column)
}
