package form

import "encoding/json"

type ResultType string

const (
	ResultKnowledge ResultType = "KNOWLEDGE"
	ResultOutcome   ResultType = "OUTCOME"
)

// Result is the outcome of scoring one submission. Type selects which
// members are meaningful: KNOWLEDGE results only carry Score/MaxScore.
type Result struct {
	Type     ResultType
	Score    float64
	MaxScore float64

	OutcomeID    *string
	OutcomeTitle *string
	Totals       map[string]float64
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Type == ResultOutcome {
		totals := r.Totals
		if totals == nil {
			totals = map[string]float64{}
		}
		return json.Marshal(struct {
			Type         ResultType         `json:"type"`
			OutcomeID    *string            `json:"outcomeId"`
			OutcomeTitle *string            `json:"outcomeTitle"`
			Totals       map[string]float64 `json:"totals"`
			Score        float64            `json:"score"`
			MaxScore     float64            `json:"maxScore"`
		}{r.Type, r.OutcomeID, r.OutcomeTitle, totals, r.Score, r.MaxScore})
	}
	return json.Marshal(struct {
		Type     ResultType `json:"type"`
		Score    float64    `json:"score"`
		MaxScore float64    `json:"maxScore"`
	}{ResultKnowledge, r.Score, r.MaxScore})
}

func (r *Result) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type         ResultType         `json:"type"`
		OutcomeID    *string            `json:"outcomeId"`
		OutcomeTitle *string            `json:"outcomeTitle"`
		Totals       map[string]float64 `json:"totals"`
		Score        float64            `json:"score"`
		MaxScore     float64            `json:"maxScore"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = Result{
		Type:         raw.Type,
		Score:        raw.Score,
		MaxScore:     raw.MaxScore,
		OutcomeID:    raw.OutcomeID,
		OutcomeTitle: raw.OutcomeTitle,
		Totals:       raw.Totals,
	}
	if r.Type == "" {
		r.Type = ResultKnowledge
	}
	return nil
}
