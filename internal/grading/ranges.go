package grading

import (
	"fmt"

	"github.com/promptform/promptform/internal/form"
)

// Range is an inclusive integer score interval.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type RangeReport struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ValidateOutcomeRanges checks that pages cover [0, maxScore] contiguously
// in array order. Problems are reported, never fixed.
func ValidateOutcomeRanges(pages []form.OutcomePage, maxScore float64) RangeReport {
	rep := RangeReport{Valid: true, Issues: []string{}}
	if len(pages) == 0 {
		return rep
	}
	top := floorInt(maxScore)
	ranges := make([]Range, len(pages))
	for i, p := range pages {
		ranges[i] = Range{From: floorInt(p.ScoreRange.From.Or(0)), To: floorInt(p.ScoreRange.To.Or(0))}
	}

	for i, r := range ranges {
		name := pageLabel(pages[i], i)
		if r.From > r.To {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s: start %d is greater than end %d", name, r.From, r.To))
		}
		if r.From < 0 {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s: start %d is below 0", name, r.From))
		}
		if r.To > top {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s: end %d exceeds the maximum score %d", name, r.To, top))
		}
		if i == 0 {
			continue
		}
		prev := ranges[i-1]
		prevName := pageLabel(pages[i-1], i-1)
		switch {
		case r.From <= prev.To:
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s overlaps %s (%d <= %d)", name, prevName, r.From, prev.To))
		case r.From > prev.To+1:
			rep.Issues = append(rep.Issues, fmt.Sprintf("gap between %s and %s: scores %d-%d map to no outcome", prevName, name, prev.To+1, r.From-1))
		}
	}

	if first := ranges[0]; first.From != 0 {
		rep.Issues = append(rep.Issues, fmt.Sprintf("ranges start at %d, scores from 0 are not covered", first.From))
	}
	if last := ranges[len(ranges)-1]; last.To != top {
		rep.Issues = append(rep.Issues, fmt.Sprintf("ranges end at %d, but the maximum score is %d", last.To, top))
	}
	rep.Valid = len(rep.Issues) == 0
	return rep
}

func pageLabel(p form.OutcomePage, i int) string {
	if p.Title != "" {
		return fmt.Sprintf("outcome %q", p.Title)
	}
	return fmt.Sprintf("outcome #%d", i+1)
}

// DistributeEvenly splits [0, floor(maxScore)] into count contiguous ranges
// whose sizes differ by at most one, larger ranges first. count is clamped
// to [1, floor(maxScore)+1] so every range holds at least one score.
func DistributeEvenly(maxScore float64, count int) []Range {
	top := floorInt(maxScore)
	if top < 0 {
		top = 0
	}
	length := top + 1
	if count < 1 {
		count = 1
	}
	if count > length {
		count = length
	}
	base, extra := length/count, length%count
	out := make([]Range, count)
	from := 0
	for i := range out {
		size := base
		if i < extra {
			size++
		}
		out[i] = Range{From: from, To: from + size - 1}
		from += size
	}
	out[count-1].To = top
	return out
}

// RedistributePages returns a copy of pages with evenly distributed score
// ranges over [0, maxScore]. Pages beyond the number of available scores
// all receive the last range.
func RedistributePages(pages []form.OutcomePage, maxScore float64) []form.OutcomePage {
	out := append([]form.OutcomePage(nil), pages...)
	if len(out) == 0 {
		return out
	}
	ranges := DistributeEvenly(maxScore, len(out))
	for i := range out {
		r := ranges[min(i, len(ranges)-1)]
		out[i].ScoreRange = form.ScoreRange{From: form.Num(float64(r.From)), To: form.Num(float64(r.To))}
	}
	return out
}

// CrowdedNote explains when there are more pages than distinct integer
// scores in [0, maxScore]. Redistribution then cannot give every page its
// own range. It returns "" when every page fits.
func CrowdedNote(pageCount int, maxScore float64) string {
	slots := max(floorInt(maxScore), 0) + 1
	if pageCount <= slots {
		return ""
	}
	return fmt.Sprintf("%d outcomes but only %d distinct scores (0-%d): the last %d outcomes share the final range; raise point values or remove outcomes",
		pageCount, slots, slots-1, pageCount-slots+1)
}

// PageForScore returns the first page whose range contains score, the way
// knowledge results are mapped onto result pages.
func PageForScore(pages []form.OutcomePage, score float64) (form.OutcomePage, bool) {
	s := floorInt(score)
	for _, p := range pages {
		if s >= floorInt(p.ScoreRange.From.Or(0)) && s <= floorInt(p.ScoreRange.To.Or(0)) {
			return p, true
		}
	}
	return form.OutcomePage{}, false
}
