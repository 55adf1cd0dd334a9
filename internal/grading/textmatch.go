package grading

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var pointsSuffix = regexp.MustCompile(`\(\s*\d+\s*\)`)

// normalizeLoose lower-cases, drops "(2)"-style point annotations and
// collapses whitespace so decorated labels compare equal to bare ones.
func normalizeLoose(v any) string {
	s := strings.ToLower(stringify(v))
	s = pointsSuffix.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// stringify renders a decoded JSON value the way a browser would when
// coercing it to a string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case []any, []string:
		return strings.Join(toArray(t), ",")
	default:
		return "[object Object]"
	}
}

func toArray(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, stringify(e))
		}
		return out
	default:
		return []string{stringify(t)}
	}
}

func setFrom(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[normalizeLoose(s)] = struct{}{}
	}
	return m
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// snake derives a stable identifier from a free-text title.
func snake(s string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

// compilePattern compiles an answer pattern case-insensitively. Empty and
// invalid patterns yield nil.
func compilePattern(p string) *regexp.Regexp {
	if p == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + p)
	if err != nil {
		return nil
	}
	return re
}
