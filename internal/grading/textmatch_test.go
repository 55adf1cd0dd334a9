package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLoose(t *testing.T) {
	assert.Equal(t, normalizeLoose("sometimes applies"), normalizeLoose("Sometimes Applies (2)"))
	assert.Equal(t, "a b", normalizeLoose("  A\t\n B ( 10 )"))
	assert.Equal(t, "keep (x)", normalizeLoose("Keep (x)"))
	assert.Equal(t, "3", normalizeLoose(3.0))
	assert.Equal(t, "", normalizeLoose(nil))
}

func TestToArray(t *testing.T) {
	assert.Equal(t, []string{}, toArray(nil))
	assert.Equal(t, []string{"x"}, toArray("x"))
	assert.Equal(t, []string{"1.5"}, toArray(1.5))
	assert.Equal(t, []string{"a", "2", "true"}, toArray([]any{"a", 2.0, true}))
	assert.Equal(t, []string{"a", "b"}, toArray([]string{"a", "b"}))
}

func TestSets(t *testing.T) {
	assert.True(t, setsEqual(setFrom([]string{"A", "b (1)"}), setFrom([]string{"B", "a"})))
	assert.False(t, setsEqual(setFrom([]string{"A"}), setFrom([]string{"A", "B"})))
	assert.False(t, setsEqual(setFrom([]string{"A", "C"}), setFrom([]string{"A", "B"})))
	assert.True(t, setsEqual(setFrom(nil), setFrom([]string{})))
}

func TestSnake(t *testing.T) {
	assert.Equal(t, "the_night_owl", snake("  The Night-Owl!! "))
	assert.Equal(t, "type_a_personality", snake("Type A / Personality"))
	assert.Equal(t, "caf", snake("Café"))
	assert.Equal(t, "", snake("!!!"))
}

func TestCompilePattern(t *testing.T) {
	assert.Nil(t, compilePattern("[bad"))
	assert.Nil(t, compilePattern(""))
	assert.NotSame(t, compilePattern("x"), compilePattern("x"))
	re := compilePattern("^ab+$")
	if assert.NotNil(t, re) {
		assert.True(t, re.MatchString("ABBB"))
	}
}
