package form

import "time"

type FieldType string

const (
	FieldText      FieldType = "text"
	FieldEmail     FieldType = "email"
	FieldPassword  FieldType = "password"
	FieldTextarea  FieldType = "textarea"
	FieldRadio     FieldType = "radio"
	FieldCheckbox  FieldType = "checkbox"
	FieldSelect    FieldType = "select"
	FieldDate      FieldType = "date"
	FieldTime      FieldType = "time"
	FieldFile      FieldType = "file"
	FieldRange     FieldType = "range"
	FieldRadioGrid FieldType = "radioGrid"
	FieldSection   FieldType = "section"
	FieldSubmit    FieldType = "submit"
)

// FieldTypes lists every known field tag in declaration order.
var FieldTypes = []FieldType{
	FieldText, FieldEmail, FieldPassword, FieldTextarea, FieldRadio, FieldCheckbox, FieldSelect,
	FieldDate, FieldTime, FieldFile, FieldRange, FieldRadioGrid, FieldSection, FieldSubmit,
}

type QuizType string

const (
	QuizKnowledge QuizType = "KNOWLEDGE"
	QuizOutcome   QuizType = "OUTCOME"
)

// ScoringRule binds a choice option (or grid column) to an outcome with a weight.
type ScoringRule struct {
	Option    Label  `json:"option,omitempty"`
	Column    Label  `json:"column,omitempty"`
	Points    Number `json:"points"`
	OutcomeID string `json:"outcomeId"`
}

type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label,omitempty"`
	Type        FieldType `json:"type"`
	Placeholder string    `json:"placeholder,omitempty"`
	Required    bool      `json:"required,omitempty"`

	Options Labels   `json:"options,omitempty"`
	Rows    Labels   `json:"rows,omitempty"`
	Columns []Column `json:"columns,omitempty"`
	Min     Number   `json:"min,omitzero"`
	Max     Number   `json:"max,omitzero"`

	// knowledge grading
	CorrectAnswer Answer `json:"correctAnswer,omitzero"`
	AnswerPattern string `json:"answerPattern,omitempty"`
	Points        Number `json:"points,omitzero"`

	// outcome grading
	Scoring []ScoringRule `json:"scoring,omitempty"`
}

// PointsOr returns the field weight, defaulting to def when unset.
func (f *Field) PointsOr(def float64) float64 { return f.Points.Or(def) }

type ScoreRange struct {
	From Number `json:"from"`
	To   Number `json:"to"`
}

// OutcomePage is one possible result of a form.
type OutcomePage struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ScoreRange  ScoreRange `json:"scoreRange"`
	OutcomeID   string     `json:"outcomeId,omitempty"`
}

type Definition struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Fields      []Field       `json:"fields"`
	IsQuiz      bool          `json:"isQuiz,omitempty"`
	QuizType    QuizType      `json:"quizType,omitempty"`
	ResultPages []OutcomePage `json:"resultPages,omitempty"`
}

// Payload maps a field name (or derived grid key) to the submitted value.
type Payload map[string]any

// Form is a stored, owned form definition.
type Form struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"ownerId"`
	Published  bool       `json:"published"`
	Definition Definition `json:"definition"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Public returns a copy safe to hand to respondents: answer keys and
// scoring weights are stripped.
func (f Form) Public() Form {
	out := f
	out.Definition.Fields = make([]Field, len(f.Definition.Fields))
	for i, fld := range f.Definition.Fields {
		fld.CorrectAnswer = Answer{}
		fld.AnswerPattern = ""
		fld.Scoring = nil
		out.Definition.Fields[i] = fld
	}
	return out
}

type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"ownerId"`
	Published bool      `json:"published"`
	QuizType  QuizType  `json:"quizType,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Response is a scored submission.
type Response struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	Payload     Payload   `json:"payload"`
	Result      Result    `json:"result"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type ListOpts struct {
	Q       string
	OwnerID string // empty lists every owner
	Limit   int
	Offset  int
}
