package grading

import (
	"strings"

	"github.com/promptform/promptform/internal/form"
)

func (e *Engine) calculateOutcome(def form.Definition, sub form.Payload) form.Result {
	ids := outcomeIDs(def)
	totals := make(map[string]float64, len(ids))
	for _, id := range ids {
		totals[id] = 0
	}
	for i := range def.Fields {
		f := &def.Fields[i]
		if len(f.Scoring) > 0 {
			accumulateOutcome(f, sub, totals)
		}
	}

	res := form.Result{
		Type:     form.ResultOutcome,
		Totals:   totals,
		MaxScore: outcomeCeiling(def),
	}
	winner, found := "", false
	for _, id := range ids {
		if !found || totals[id] > totals[winner] {
			winner, found = id, true
		}
	}
	if found {
		res.OutcomeID = &winner
		res.Score = totals[winner]
		for _, p := range def.ResultPages {
			if PageID(p) == winner {
				title := p.Title
				res.OutcomeTitle = &title
				break
			}
		}
	}
	e.log.Debug("outcome scored",
		"title", def.Title,
		"totals", totals,
		"winner", winner,
		"max_score", res.MaxScore)
	return res
}

// PageID is the join key of a result page: its explicit outcome id, or a
// slug of its title.
func PageID(p form.OutcomePage) string {
	if id := strings.TrimSpace(p.OutcomeID); id != "" {
		return id
	}
	return snake(p.Title)
}

func ruleID(r form.ScoringRule) string { return strings.TrimSpace(r.OutcomeID) }

// outcomeIDs lists every known outcome: result pages first, in page order,
// then ids only referenced by scoring rules in first-seen order. The order
// doubles as the tie-break order.
func outcomeIDs(def form.Definition) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, p := range def.ResultPages {
		add(PageID(p))
	}
	for _, f := range def.Fields {
		for _, r := range f.Scoring {
			add(ruleID(r))
		}
	}
	return ids
}

func accumulateOutcome(f *form.Field, sub form.Payload, totals map[string]float64) {
	byOption := map[string][]form.ScoringRule{}
	byColumn := map[string][]form.ScoringRule{}
	for _, r := range f.Scoring {
		if ruleID(r) == "" {
			continue
		}
		if r.Option != "" {
			k := normalizeLoose(string(r.Option))
			byOption[k] = append(byOption[k], r)
		}
		if r.Column != "" {
			k := normalizeLoose(string(r.Column))
			byColumn[k] = append(byColumn[k], r)
		}
	}
	fire := func(rules []form.ScoringRule) {
		for _, r := range rules {
			totals[ruleID(r)] += r.Points.Or(0)
		}
	}

	switch f.Type {
	case form.FieldRadio, form.FieldSelect:
		if vals := toArray(sub[f.Name]); len(vals) > 0 {
			fire(byOption[normalizeLoose(vals[0])])
		}
	case form.FieldCheckbox:
		for _, v := range toArray(sub[f.Name]) {
			fire(byOption[normalizeLoose(v)])
		}
	case form.FieldRadioGrid:
		for i, row := range f.Rows {
			picked, ok := resolveGridAnswer(sub, f, row, i)
			if !ok {
				picked, ok = looseGridAnswer(sub, f, row)
			}
			if ok {
				fire(byColumn[normalizeLoose(picked)])
			}
		}
	}
}

// outcomeCeiling returns the best total any single outcome can reach. Each
// field contributes its best rule per outcome once, grids included, and
// fields are assumed independent.
func outcomeCeiling(def form.Definition) float64 {
	ceilings := map[string]float64{}
	var order []string
	for _, f := range def.Fields {
		best := map[string]float64{}
		for _, r := range f.Scoring {
			id := ruleID(r)
			if id == "" {
				continue
			}
			p := r.Points.Or(0)
			if cur, ok := best[id]; !ok || p > cur {
				best[id] = p
			}
		}
		for _, r := range f.Scoring {
			id := ruleID(r)
			p, ok := best[id]
			if !ok {
				continue
			}
			if _, seen := ceilings[id]; !seen {
				order = append(order, id)
			}
			ceilings[id] += p
			delete(best, id)
		}
	}
	top := 0.0
	for i, id := range order {
		if i == 0 || ceilings[id] > top {
			top = ceilings[id]
		}
	}
	return top
}
