package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptform/promptform/internal/form"
)

func radioField(name string, correct string, points float64) form.Field {
	return form.Field{
		Name:          name,
		Type:          form.FieldRadio,
		Options:       []string{"A", "B"},
		CorrectAnswer: form.Text(correct),
		Points:        form.Num(points),
	}
}

func quiz(fields ...form.Field) form.Definition {
	return form.Definition{Title: "quiz", IsQuiz: true, Fields: fields}
}

func TestKnowledgeRadio(t *testing.T) {
	def := quiz(radioField("q1", "A", 2))

	cases := []struct {
		name  string
		sub   form.Payload
		score float64
	}{
		{"correct", form.Payload{"q1": "A"}, 2},
		{"wrong", form.Payload{"q1": "B"}, 0},
		{"unanswered", form.Payload{}, 0},
		{"loose match", form.Payload{"q1": "  a (3) "}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Calculate(def, tc.sub)
			assert.Equal(t, form.ResultKnowledge, res.Type)
			assert.Equal(t, tc.score, res.Score)
			assert.Equal(t, 2.0, res.MaxScore)
		})
	}
}

func TestKnowledgeDefaultPointsAndUngradable(t *testing.T) {
	def := quiz(
		form.Field{Name: "q1", Type: form.FieldSelect, CorrectAnswer: form.Text("Paris")},
		form.Field{Name: "q2", Type: form.FieldRadio, Options: []string{"x", "y"}},
		form.Field{Name: "when", Type: form.FieldDate, CorrectAnswer: form.Text("2024-01-01")},
		form.Field{Name: "go", Type: form.FieldSubmit},
	)
	res := Calculate(def, form.Payload{"q1": "paris", "q2": "x", "when": "2024-01-01"})
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, 1.0, res.MaxScore)
}

func TestKnowledgeCheckbox(t *testing.T) {
	exact := form.Field{Name: "c", Type: form.FieldCheckbox, Options: []string{"A", "B", "C"}, CorrectAnswer: form.List("A", "B")}
	def := quiz(exact)

	assert.Equal(t, 1.0, Calculate(def, form.Payload{"c": []any{"B", "A"}}).Score)
	assert.Equal(t, 0.0, Calculate(def, form.Payload{"c": []any{"A"}}).Score)
	assert.Equal(t, 0.0, Calculate(def, form.Payload{"c": []any{"A", "B", "C"}}).Score)
	assert.Equal(t, 1.0, Calculate(def, form.Payload{"c": []any{"A"}}).MaxScore)

	member := form.Field{Name: "c", Type: form.FieldCheckbox, CorrectAnswer: form.Text("C")}
	def = quiz(member)
	assert.Equal(t, 1.0, Calculate(def, form.Payload{"c": []any{"A", "c"}}).Score)
	assert.Equal(t, 0.0, Calculate(def, form.Payload{"c": "A"}).Score)

	empty := form.Field{Name: "c", Type: form.FieldCheckbox, CorrectAnswer: form.List()}
	assert.Equal(t, 0.0, Calculate(quiz(empty), form.Payload{"c": []any{"A"}}).MaxScore)
}

func TestKnowledgePattern(t *testing.T) {
	f := form.Field{Name: "t", Type: form.FieldText, AnswerPattern: `^colou?r$`, CorrectAnswer: form.Text("nope")}
	def := quiz(f)
	assert.Equal(t, 1.0, Calculate(def, form.Payload{"t": "COLOR"}).Score)
	assert.Equal(t, 0.0, Calculate(def, form.Payload{"t": "nope"}).Score)

	// an invalid pattern falls back to correctAnswer
	f.AnswerPattern = `(unclosed`
	def = quiz(f)
	res := Calculate(def, form.Payload{"t": "Nope"})
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, 1.0, res.MaxScore)

	// invalid pattern and no answer: not gradable
	f.CorrectAnswer = form.Answer{}
	assert.Equal(t, 0.0, Calculate(quiz(f), form.Payload{"t": "x"}).MaxScore)
}

func TestKnowledgeRange(t *testing.T) {
	f := form.Field{Name: "r", Type: form.FieldRange, Min: form.Num(10), Max: form.Num(0)}
	def := quiz(f)

	res := Calculate(def, form.Payload{"r": "7"})
	assert.Equal(t, 7.0, res.Score)
	assert.Equal(t, 10.0, res.MaxScore)

	assert.Equal(t, 10.0, Calculate(def, form.Payload{"r": 42.0}).Score)
	assert.Equal(t, 0.0, Calculate(def, form.Payload{"r": -3.0}).Score)
	assert.Equal(t, 0.0, Calculate(def, form.Payload{}).Score)
}

func TestKnowledgeGridOrdinalFallback(t *testing.T) {
	f := form.Field{
		Name:    "g",
		Type:    form.FieldRadioGrid,
		Rows:    []string{"r1", "r2"},
		Columns: []form.Column{{Label: "Never"}, {Label: "Sometimes"}, {Label: "Always"}},
	}
	def := quiz(f)

	res := Calculate(def, form.Payload{"g": map[string]any{"r1": "Always", "r2": "always"}})
	assert.Equal(t, 6.0, res.Score)
	assert.Equal(t, 6.0, res.MaxScore)

	res = Calculate(def, form.Payload{"g.r1": "Sometimes"})
	assert.Equal(t, 2.0, res.Score)
	assert.Equal(t, 6.0, res.MaxScore)
}

func TestKnowledgeGridExplicitPoints(t *testing.T) {
	f := form.Field{
		Name:    "g",
		Type:    form.FieldRadioGrid,
		Rows:    []string{"only"},
		Columns: []form.Column{{Label: "Lo", Points: form.Num(1)}, {Label: "Hi", Points: form.Num(5)}},
	}
	res := Calculate(quiz(f), form.Payload{"g[0]": 1.0})
	assert.Equal(t, 5.0, res.Score)
	assert.Equal(t, 5.0, res.MaxScore)
}

func TestColumnValues(t *testing.T) {
	same := []form.Column{{Label: "a", Points: form.Num(2)}, {Label: "b", Points: form.Num(2)}}
	assert.Equal(t, []float64{1, 2}, columnValues(same))

	partial := []form.Column{{Label: "a"}, {Label: "b", Points: form.Num(4)}}
	assert.Equal(t, []float64{0, 4}, columnValues(partial))

	assert.Empty(t, columnValues(nil))
}

func personality() form.Definition {
	return form.Definition{
		Title:    "Which pet are you",
		QuizType: form.QuizOutcome,
		Fields: []form.Field{
			{
				Name: "weekend", Type: form.FieldRadio, Options: []string{"Nap (2)", "Hike"},
				Scoring: []form.ScoringRule{
					{Option: "Nap", Points: form.Num(2), OutcomeID: "cat"},
					{Option: "Hike", Points: form.Num(3), OutcomeID: "dog"},
				},
			},
			{
				Name: "likes", Type: form.FieldCheckbox, Options: []string{"Fish", "Balls"},
				Scoring: []form.ScoringRule{
					{Option: "Fish", Points: form.Num(1), OutcomeID: "cat"},
					{Option: "Balls", Points: form.Num(1), OutcomeID: "dog"},
				},
			},
			{
				Name: "traits", Type: form.FieldRadioGrid, Rows: []string{"Loyal", "Aloof"},
				Columns: []form.Column{{Label: "Yes"}, {Label: "No"}},
				Scoring: []form.ScoringRule{
					{Column: "Yes", Points: form.Num(2), OutcomeID: "dog"},
					{Column: "No", Points: form.Num(1), OutcomeID: "cat"},
				},
			},
		},
		ResultPages: []form.OutcomePage{
			{Title: "Cat", OutcomeID: "cat"},
			{Title: "Dog", OutcomeID: "dog"},
		},
	}
}

func TestOutcomeScoring(t *testing.T) {
	def := personality()
	res := Calculate(def, form.Payload{
		"weekend": "Hike",
		"likes":   []any{"Fish", "Balls"},
		"traits":  map[string]any{"Loyal": "Yes"},
		"traits.Aloof": "No",
	})
	require.Equal(t, form.ResultOutcome, res.Type)
	require.NotNil(t, res.OutcomeID)
	assert.Equal(t, "dog", *res.OutcomeID)
	require.NotNil(t, res.OutcomeTitle)
	assert.Equal(t, "Dog", *res.OutcomeTitle)
	assert.Equal(t, map[string]float64{"cat": 2, "dog": 6}, res.Totals)
	assert.Equal(t, 6.0, res.Score)
	// dog: hike 3 + balls 1 + grid 2 (once per field)
	assert.Equal(t, 6.0, res.MaxScore)
}

func TestOutcomeDecoratedOptionMatches(t *testing.T) {
	res := Calculate(personality(), form.Payload{"weekend": "Nap (2)"})
	require.NotNil(t, res.OutcomeID)
	assert.Equal(t, "cat", *res.OutcomeID)
	assert.Equal(t, 2.0, res.Score)
}

func TestOutcomeTieBreakFollowsPageOrder(t *testing.T) {
	def := form.Definition{
		QuizType: form.QuizOutcome,
		Fields: []form.Field{{
			Name: "q", Type: form.FieldCheckbox,
			Scoring: []form.ScoringRule{
				{Option: "x", Points: form.Num(1), OutcomeID: "a"},
				{Option: "y", Points: form.Num(1), OutcomeID: "b"},
			},
		}},
		ResultPages: []form.OutcomePage{{Title: "B", OutcomeID: "b"}, {Title: "A", OutcomeID: "a"}},
	}
	res := Calculate(def, form.Payload{"q": []any{"x", "y"}})
	require.NotNil(t, res.OutcomeID)
	assert.Equal(t, "b", *res.OutcomeID)
	assert.Equal(t, map[string]float64{"a": 1, "b": 1}, res.Totals)
}

func TestOutcomeSlugPageIDsAndEmptyForms(t *testing.T) {
	def := form.Definition{
		QuizType:    form.QuizOutcome,
		ResultPages: []form.OutcomePage{{Title: "The Night Owl!"}, {Title: "Early Bird"}},
	}
	res := Calculate(def, nil)
	require.NotNil(t, res.OutcomeID)
	assert.Equal(t, "the_night_owl", *res.OutcomeID)
	assert.Equal(t, map[string]float64{"the_night_owl": 0, "early_bird": 0}, res.Totals)
	assert.Equal(t, 0.0, res.MaxScore)

	res = Calculate(form.Definition{QuizType: form.QuizOutcome}, nil)
	assert.Nil(t, res.OutcomeID)
	assert.Nil(t, res.OutcomeTitle)
	assert.Empty(t, res.Totals)
}

func TestOutcomeWinnerWithoutPage(t *testing.T) {
	def := form.Definition{
		QuizType: form.QuizOutcome,
		Fields: []form.Field{{
			Name: "q", Type: form.FieldSelect,
			Scoring: []form.ScoringRule{{Option: "x", Points: form.Num(4), OutcomeID: "hidden"}},
		}},
	}
	res := Calculate(def, form.Payload{"q": "x"})
	require.NotNil(t, res.OutcomeID)
	assert.Equal(t, "hidden", *res.OutcomeID)
	assert.Nil(t, res.OutcomeTitle)
	assert.Equal(t, 4.0, res.Score)
}

func TestModeSelection(t *testing.T) {
	scored := form.Field{Name: "q", Type: form.FieldRadio, Scoring: []form.ScoringRule{{Option: "a", Points: form.Num(1), OutcomeID: "x"}}}

	assert.Equal(t, form.QuizOutcome, Mode(form.Definition{QuizType: form.QuizOutcome}))
	assert.Equal(t, form.QuizKnowledge, Mode(form.Definition{QuizType: form.QuizKnowledge, Fields: []form.Field{scored}}))
	assert.Equal(t, form.QuizOutcome, Mode(form.Definition{IsQuiz: true, Fields: []form.Field{scored}}))
	assert.Equal(t, form.QuizOutcome, Mode(form.Definition{ResultPages: []form.OutcomePage{{Title: "x", OutcomeID: "x"}}}))
	assert.Equal(t, form.QuizKnowledge, Mode(form.Definition{IsQuiz: true, ResultPages: []form.OutcomePage{{Title: "x"}}}))
	assert.Equal(t, form.QuizType(""), Mode(form.Definition{}))
}

func TestCalculateDefaultsToZeroKnowledge(t *testing.T) {
	def := form.Definition{Title: "survey", Fields: []form.Field{radioField("q", "A", 5)}}
	res := Calculate(def, form.Payload{"q": "A"})
	assert.Equal(t, form.Result{Type: form.ResultKnowledge}, res)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"KNOWLEDGE","score":0,"maxScore":0}`, string(b))
}

func TestCalculateIsIdempotent(t *testing.T) {
	def := personality()
	sub := form.Payload{"weekend": "Nap", "traits[0]": 0.0, "traits": map[string]any{"aloof": "no"}}
	a := Calculate(def, sub)
	b := Calculate(def, sub)
	assert.Equal(t, a, b)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, string(ja), string(jb))
}

func TestMaxScore(t *testing.T) {
	assert.Equal(t, 2.0, MaxScore(quiz(radioField("q", "A", 2))))
	assert.Equal(t, 6.0, MaxScore(personality()))
	assert.Equal(t, 0.0, MaxScore(form.Definition{}))
}

func TestDefinitionFromJSON(t *testing.T) {
	raw := `{
	  "title": "Grid quiz",
	  "isQuiz": true,
	  "fields": [
	    {"name": "g", "type": "radioGrid", "rows": ["a", "b"],
	     "columns": ["One", {"label": "Two", "points": "3"}, {"label": "Three", "points": 9}]},
	    {"name": "c", "type": "checkbox", "correctAnswer": ["x", "y"], "points": "bogus"}
	  ]
	}`
	var def form.Definition
	require.NoError(t, json.Unmarshal([]byte(raw), &def))

	res := Calculate(def, form.Payload{"g.a": "Three", "g[1]": 1.0, "c": []any{"y", "X"}})
	// explicit column points: One=0, Two=3, Three=9; checkbox falls back to 1 point
	assert.Equal(t, 9.0+3.0+1.0, res.Score)
	assert.Equal(t, 18.0+1.0, res.MaxScore)
}

func TestOutcomeNumericLabels(t *testing.T) {
	def, err := form.ParseDefinition([]byte(`{
	  "title": "Rate it",
	  "quizType": "OUTCOME",
	  "fields": [
	    {"name": "stars", "type": "radio", "options": [1, 5],
	     "scoring": [{"option": 5, "outcomeId": "fan", "points": 3}, {"option": 1, "outcomeId": "critic", "points": 3}]},
	    {"name": "grid", "type": "radioGrid", "rows": [2024], "columns": [0, 1],
	     "scoring": [{"column": 1, "outcomeId": "fan", "points": 2}]}
	  ]
	}`))
	require.NoError(t, err)

	res := Calculate(def, form.Payload{"stars": 5.0, "grid.2024": "1"})
	require.NotNil(t, res.OutcomeID)
	assert.Equal(t, "fan", *res.OutcomeID)
	assert.Equal(t, 5.0, res.Totals["fan"])
	assert.Equal(t, 0.0, res.Totals["critic"])
}
