package grading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/promptform/promptform/internal/form"
)

// gridResolver looks up the column picked for one radioGrid row in one
// payload encoding.
type gridResolver func(sub form.Payload, f *form.Field, row string, rowIndex int) (string, bool)

// gridResolvers are tried in order; the first hit wins. Payloads written
// by different client versions may mix encodings.
var gridResolvers = []gridResolver{
	nestedGridAnswer,
	dottedGridAnswer,
	indexedGridAnswer,
}

// resolveGridAnswer returns the column label selected for row, or "", false
// when the row was not answered.
func resolveGridAnswer(sub form.Payload, f *form.Field, row string, rowIndex int) (string, bool) {
	for _, s := range gridResolvers {
		if v, ok := s(sub, f, row, rowIndex); ok {
			return v, true
		}
	}
	return "", false
}

// nestedGridAnswer: {"grid": {"Row 1": "Agree"}}
func nestedGridAnswer(sub form.Payload, f *form.Field, row string, _ int) (string, bool) {
	switch m := sub[f.Name].(type) {
	case map[string]any:
		if v, ok := m[row]; ok && v != nil {
			return stringify(v), true
		}
	case map[string]string:
		if v, ok := m[row]; ok {
			return v, true
		}
	}
	return "", false
}

// dottedGridAnswer: {"grid.Row 1": "Agree"}
func dottedGridAnswer(sub form.Payload, f *form.Field, row string, _ int) (string, bool) {
	v, ok := sub[f.Name+"."+row]
	if !ok || v == nil {
		return "", false
	}
	return stringify(v), true
}

// indexedGridAnswer: {"grid[0]": 2}, the value being a column index.
func indexedGridAnswer(sub form.Payload, f *form.Field, _ string, rowIndex int) (string, bool) {
	v, ok := sub[fmt.Sprintf("%s[%d]", f.Name, rowIndex)]
	if !ok || v == nil {
		return "", false
	}
	if n, ok := numberOf(v); ok && n == float64(int(n)) {
		if i := int(n); i >= 0 && i < len(f.Columns) {
			return f.Columns[i].Label, true
		}
	}
	return stringify(v), true
}

// looseGridAnswer is the last resort used by outcome scoring: row labels are
// compared loosely against nested keys and "name.<row>" keys.
func looseGridAnswer(sub form.Payload, f *form.Field, row string) (string, bool) {
	want := normalizeLoose(row)
	if m, ok := sub[f.Name].(map[string]any); ok {
		for _, k := range sortedKeys(m) {
			if v := m[k]; v != nil && normalizeLoose(k) == want {
				return stringify(v), true
			}
		}
	}
	prefix := f.Name + "."
	for _, k := range sortedKeys(sub) {
		v := sub[k]
		if v == nil || !strings.HasPrefix(k, prefix) {
			continue
		}
		if normalizeLoose(strings.TrimPrefix(k, prefix)) == want {
			return stringify(v), true
		}
	}
	return "", false
}

// sortedKeys keeps loose lookups deterministic when several keys normalize
// to the same label.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
