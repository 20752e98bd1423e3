package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wheelshow/internal/phrases"
)

func TestLetterClassification(t *testing.T) {
	t.Parallel()
	for _, r := range "AEIOUaeiou" {
		assert.True(t, IsVowel(r), "%c", r)
		assert.False(t, IsConsonant(r), "%c", r)
	}
	for _, r := range "BCDFGHJKLMNPQRSTVWXYZbcdy" {
		assert.True(t, IsConsonant(r), "%c", r)
		assert.False(t, IsVowel(r), "%c", r)
	}
	for _, r := range " '-&1é" {
		assert.False(t, IsConsonant(r), "%q", r)
		assert.False(t, IsVowel(r), "%q", r)
	}
}

func TestLetterSet(t *testing.T) {
	t.Parallel()
	s := LettersOf("HELLO, WORLD")
	assert.Equal(t, "DEHLORW", s.String())
	assert.Equal(t, 7, s.Len())
	assert.True(t, s.Has('h'))
	assert.False(t, s.Has('Z'))
	assert.Equal(t, "EO", s.Vowels().String())
	assert.Equal(t, "DHLRW", s.Consonants().String())
	assert.Equal(t, "DHLRW", s.Without(LettersOf(Vowels)).String())
	assert.Equal(t, s, s.With('!'))

	text, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "DEHLORW", string(text))
}

func TestConsonantFrequencyCoversEveryConsonant(t *testing.T) {
	t.Parallel()
	set := LettersOf(ConsonantFrequency)
	assert.Equal(t, 21, set.Len())
	assert.Zero(t, set.Vowels())
	assert.Len(t, ConsonantFrequency, 21)
}

func TestResolveConsonantPaysPerOccurrence(t *testing.T) {
	t.Parallel()
	b := NewBoard(phrases.Entry{Category: "PHRASE", Text: "TOTAL TREAT"})

	res, err := Resolve(b, PickConsonant, 't', 500)
	require.NoError(t, err)
	assert.Equal(t, 'T', res.Letter)
	assert.Equal(t, 4, res.Count)
	assert.Equal(t, 2000, res.Delta)
	assert.True(t, res.Board.Revealed.Has('T'))
	assert.True(t, res.Board.Guessed.Has('T'))
	assert.False(t, res.Solved)

	// The input board is a value and is left alone.
	assert.Zero(t, b.Guessed)
}

func TestResolveMissMarksGuessedOnly(t *testing.T) {
	t.Parallel()
	b := NewBoard(phrases.Entry{Category: "THING", Text: "CAT"})

	res, err := Resolve(b, PickConsonant, 'Z', 900)
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Zero(t, res.Delta)
	assert.True(t, res.Board.Guessed.Has('Z'))
	assert.Zero(t, res.Board.Revealed)
}

func TestResolveVowelPaysNothing(t *testing.T) {
	t.Parallel()
	b := NewBoard(phrases.Entry{Category: "THING", Text: "BANANA"})

	res, err := Resolve(b, PickVowel, 'A', 900)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)
	assert.Zero(t, res.Delta)
}

func TestResolveRejections(t *testing.T) {
	t.Parallel()
	b := NewBoard(phrases.Entry{Category: "THING", Text: "CAT"})
	b.Guessed = LettersOf("T")

	tests := []struct {
		name   string
		kind   PickKind
		letter rune
		want   Reason
	}{
		{"vowel as consonant", PickConsonant, 'A', ReasonNotConsonant},
		{"consonant as vowel", PickVowel, 'C', ReasonNotVowel},
		{"digit", PickConsonant, '7', ReasonNotALetter},
		{"space", PickVowel, ' ', ReasonNotALetter},
		{"already guessed", PickConsonant, 't', ReasonAlreadyGuessed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(b, tt.kind, tt.letter, 500)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolveSolvesOnLastLetter(t *testing.T) {
	t.Parallel()
	b := NewBoard(phrases.Entry{Category: "THING", Text: "CAT"})
	b.Revealed = LettersOf("CT")
	b.Guessed = LettersOf("CT")

	res, err := Resolve(b, PickVowel, 'A', 0)
	require.NoError(t, err)
	assert.True(t, res.Solved)
}
