package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lit(c rune) Literal { return Literal{Char: c} }

func TestLiteralMatches(t *testing.T) {
	a := lit('a')

	assert.True(t, a.Matches("a"))
	assert.False(t, a.Matches("b"))
	assert.False(t, a.Matches(""))
	assert.False(t, a.Matches("aa"))

	assert.True(t, lit('ä').Matches("ä"))
}

func TestCharacterClassMatches(t *testing.T) {
	c := CharacterClass{Chars: "abc"}

	for _, s := range []string{"a", "b", "c"} {
		assert.True(t, c.Matches(s), s)
	}
	for _, s := range []string{"", "d", "ab"} {
		assert.False(t, c.Matches(s), s)
	}

	assert.False(t, CharacterClass{}.Matches("a"))
}

func TestInvalidUTF8IsNoCharacter(t *testing.T) {
	r := lit('\uFFFD')
	assert.True(t, r.Matches("\uFFFD"))
	for _, s := range []string{"\xff", "\x80", "\xfe"} {
		assert.False(t, r.Matches(s), "%q", s)
	}

	c := CharacterClass{Chars: "a\xff"}
	assert.True(t, c.Matches("a"))
	assert.False(t, c.Matches("\xff"))
	assert.False(t, c.Matches("\uFFFD"))

	assert.False(t, Repetition{Child: r}.Matches("\xff\xff"))
}

func TestConcatMatches(t *testing.T) {
	ab := Concat{Left: lit('a'), Right: lit('b')}

	assert.True(t, ab.Matches("ab"))
	assert.False(t, ab.Matches("ba"))
	assert.False(t, ab.Matches("a"))
	assert.False(t, ab.Matches("b"))
	assert.False(t, ab.Matches(""))
	assert.False(t, ab.Matches("abc"))

	// Right may be asked to match the empty string at split == len(s).
	aEOF := Concat{Left: lit('a'), Right: EOF{}}
	assert.True(t, aEOF.Matches("a"))
	assert.False(t, aEOF.Matches("ab"))

	multibyte := Concat{Left: lit('ö'), Right: lit('ß')}
	assert.True(t, multibyte.Matches("öß"))
}

func TestRepetitionMatches(t *testing.T) {
	rep := Repetition{Child: lit('a')}

	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"a", true},
		{"aa", true},
		{"aaaa", true},
		{"b", false},
		{"ab", false},
		{"aab", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rep.Matches(tt.input), "%q", tt.input)
	}

	classRep := Repetition{Child: CharacterClass{Chars: "ab"}}
	assert.True(t, classRep.Matches("abba"))
	assert.False(t, classRep.Matches("abca"))
}

func TestRepetitionMatchesAt(t *testing.T) {
	rep := Repetition{Child: lit('a')}

	assert.True(t, rep.MatchesAt("baa", 1))
	assert.True(t, rep.MatchesAt("baa", 3))
	assert.False(t, rep.MatchesAt("baa", 0))
	assert.False(t, rep.MatchesAt("baa", -1))
	assert.False(t, rep.MatchesAt("baa", 4))
}

func TestRepetitionInsideConcat(t *testing.T) {
	n := Concat{Left: Repetition{Child: lit('a')}, Right: lit('b')}

	for _, s := range []string{"b", "ab", "aaab"} {
		assert.True(t, n.Matches(s), s)
	}
	for _, s := range []string{"", "a", "aabbc", "ba"} {
		assert.False(t, n.Matches(s), s)
	}

	both := Concat{Left: Repetition{Child: lit('a')}, Right: Repetition{Child: lit('b')}}
	for _, s := range []string{"", "a", "b", "aaabbb"} {
		assert.True(t, both.Matches(s), s)
	}
	assert.False(t, both.Matches("aaabbbc"))
	assert.False(t, both.Matches("ba"))
}

// The greedy run offers the child a single character per step,
// so a child consuming two characters only matches once, covering the whole suffix.
func TestRepetitionMultiCharacterChild(t *testing.T) {
	rep := Repetition{Child: Concat{Left: lit('a'), Right: lit('b')}}

	assert.True(t, rep.Matches(""))
	assert.True(t, rep.Matches("ab"))
	assert.False(t, rep.Matches("abab"))
}

func TestNestedRepetition(t *testing.T) {
	rep := Repetition{Child: Repetition{Child: lit('a')}}

	assert.True(t, rep.Matches(""))
	assert.True(t, rep.Matches("aaa"))
	assert.False(t, rep.Matches("aba"))
}

func TestEOF(t *testing.T) {
	assert.True(t, EOF{}.Matches(""))
	assert.False(t, EOF{}.Matches("a"))
	assert.True(t, EOF{}.MatchesAt("abc", 3))
	assert.False(t, EOF{}.MatchesAt("abc", 2))
	assert.False(t, EOF{}.MatchesAt("abc", 4))
}

func TestMatchesIsPure(t *testing.T) {
	n := Concat{Left: Repetition{Child: lit('a')}, Right: lit('b')}

	first := n.Matches("aaab")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Matches("aaab"))
	}
}
