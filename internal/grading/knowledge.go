package grading

import (
	"math"
	"strings"

	"github.com/promptform/promptform/internal/form"
)

// fieldScore is one field's contribution to a knowledge result.
type fieldScore struct {
	Earned float64
	Max    float64
}

// Strategy grades a single field in knowledge mode. Fields without grading
// configuration return a zero fieldScore.
type Strategy interface {
	Grade(f *form.Field, sub form.Payload) fieldScore
}

var knowledgeStrategies = map[form.FieldType]Strategy{
	form.FieldRadio:     singleAnswerStrategy{},
	form.FieldSelect:    singleAnswerStrategy{},
	form.FieldText:      singleAnswerStrategy{},
	form.FieldTextarea:  singleAnswerStrategy{},
	form.FieldEmail:     singleAnswerStrategy{},
	form.FieldPassword:  singleAnswerStrategy{},
	form.FieldCheckbox:  checkboxStrategy{},
	form.FieldRange:     rangeStrategy{},
	form.FieldRadioGrid: matrixStrategy{},
}

func (e *Engine) calculateKnowledge(def form.Definition, sub form.Payload) form.Result {
	res := form.Result{Type: form.ResultKnowledge}
	for i := range def.Fields {
		f := &def.Fields[i]
		s, ok := knowledgeStrategies[f.Type]
		if !ok {
			continue
		}
		fs := s.Grade(f, sub)
		res.Score += fs.Earned
		res.MaxScore += fs.Max
	}
	return res
}

func graded(f *form.Field, correct bool) fieldScore {
	p := f.PointsOr(1)
	if correct {
		return fieldScore{Earned: p, Max: p}
	}
	return fieldScore{Max: p}
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

// --- Strategies ---

// singleAnswerStrategy covers radio, select and the text-like inputs.
type singleAnswerStrategy struct{}

func (singleAnswerStrategy) Grade(f *form.Field, sub form.Payload) fieldScore {
	val := sub[f.Name]
	if re := compilePattern(f.AnswerPattern); re != nil {
		return graded(f, re.MatchString(stringify(val)))
	}
	if f.CorrectAnswer.IsList() || !hasText(f.CorrectAnswer.String()) {
		return fieldScore{}
	}
	return graded(f, normalizeLoose(val) == normalizeLoose(f.CorrectAnswer.String()))
}

type checkboxStrategy struct{}

func (checkboxStrategy) Grade(f *form.Field, sub form.Payload) fieldScore {
	val := sub[f.Name]
	if re := compilePattern(f.AnswerPattern); re != nil {
		return graded(f, re.MatchString(stringify(val)))
	}
	selected := setFrom(toArray(val))
	if f.CorrectAnswer.IsList() {
		want := f.CorrectAnswer.Values()
		if len(want) == 0 {
			return fieldScore{}
		}
		return graded(f, setsEqual(selected, setFrom(want)))
	}
	if !hasText(f.CorrectAnswer.String()) {
		return fieldScore{}
	}
	_, ok := selected[normalizeLoose(f.CorrectAnswer.String())]
	return graded(f, ok)
}

// rangeStrategy awards the distance of the selected value above min.
type rangeStrategy struct{}

func (rangeStrategy) Grade(f *form.Field, sub form.Payload) fieldScore {
	a, b := f.Min.Or(defaultRangeMin), f.Max.Or(defaultRangeMax)
	lo, hi := math.Min(a, b), math.Max(a, b)
	out := fieldScore{Max: hi - lo}
	if v, ok := numberOf(sub[f.Name]); ok {
		out.Earned = clamp(v, lo, hi) - lo
	}
	return out
}

// Browser defaults for <input type="range"> without bounds.
const (
	defaultRangeMin = 0
	defaultRangeMax = 100
)

type matrixStrategy struct{}

func (matrixStrategy) Grade(f *form.Field, sub form.Payload) fieldScore {
	values := columnValues(f.Columns)
	rowMax := 0.0
	for i, v := range values {
		if i == 0 || v > rowMax {
			rowMax = v
		}
	}
	var out fieldScore
	for i, row := range f.Rows {
		out.Max += rowMax
		picked, ok := resolveGridAnswer(sub, f, row, i)
		if !ok {
			continue
		}
		want := normalizeLoose(picked)
		for c, col := range f.Columns {
			if normalizeLoose(col.Label) == want {
				out.Earned += values[c]
				break
			}
		}
	}
	return out
}

// columnValues returns each column's effective point value: the configured
// points when they actually distinguish columns, otherwise the 1-based
// position. In explicit mode a column without points is worth 0.
func columnValues(cols []form.Column) []float64 {
	out := make([]float64, len(cols))
	anySet, allSame := false, true
	for i, c := range cols {
		if c.Points.Valid {
			anySet = true
		}
		if i > 0 && c.Points != cols[0].Points {
			allSame = false
		}
	}
	explicit := anySet && !allSame
	for i, c := range cols {
		if explicit {
			out[i] = c.Points.Or(0)
		} else {
			out[i] = float64(i + 1)
		}
	}
	return out
}
