package form

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an optional JSON number. It also accepts numeric strings;
// anything else (objects, garbage strings, NaN/Inf) decodes as unset
// instead of failing the whole definition.
type Number struct {
	Value float64
	Valid bool
}

func Num(v float64) Number { return Number{Value: v, Valid: true} }

func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

func (n Number) IsZero() bool { return !n.Valid }

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		*n = finite(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*n = finite(f)
		}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func finite(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Num(v)
}

// Answer is a configured correct answer: a single string or a list.
type Answer struct {
	values []string
	list   bool
}

func Text(s string) Answer        { return Answer{values: []string{s}} }
func List(vs ...string) Answer    { return Answer{values: append([]string{}, vs...), list: true} }
func (a Answer) IsList() bool     { return a.list }
func (a Answer) IsZero() bool     { return len(a.values) == 0 && !a.list }
func (a Answer) Values() []string { return append([]string(nil), a.values...) }

// String returns the scalar answer, or "" for lists and unset answers.
func (a Answer) String() string {
	if a.list || len(a.values) == 0 {
		return ""
	}
	return a.values[0]
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	*a = Answer{}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if e == nil {
				continue
			}
			out = append(out, scalarString(e))
		}
		*a = Answer{values: out, list: true}
	case nil, map[string]any:
	default:
		*a = Text(scalarString(v))
	}
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.list {
		if a.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.values)
	}
	if len(a.values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(a.values[0])
}

// Label is an option or column key on a scoring rule. Numbers and booleans
// decode as their text, so `"option": 5` matches the option "5".
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
	*l = ""
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch raw.(type) {
	case nil, map[string]any, []any:
	default:
		*l = Label(scalarString(raw))
	}
	return nil
}

// Labels is a list of choice options or grid rows with the same leniency
// as Label. Nulls are skipped.
type Labels []string

func (ls *Labels) UnmarshalJSON(b []byte) error {
	*ls = nil
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	out := make(Labels, 0, len(raw))
	for _, e := range raw {
		if e == nil {
			continue
		}
		out = append(out, scalarString(e))
	}
	*ls = out
	return nil
}

// Column is a radioGrid column, written either as a bare label or as
// {"label": ..., "points": ...}.
type Column struct {
	Label  string
	Points Number
}

func (c *Column) UnmarshalJSON(b []byte) error {
	*c = Column{}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			Label  string `json:"label"`
			Points Number `json:"points"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		c.Label, c.Points = obj.Label, obj.Points
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return nil
	}
	c.Label = scalarString(raw)
	return nil
}

func (c Column) MarshalJSON() ([]byte, error) {
	if !c.Points.Valid {
		return json.Marshal(c.Label)
	}
	return json.Marshal(struct {
		Label  string  `json:"label"`
		Points float64 `json:"points"`
	}{c.Label, c.Points.Value})
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
