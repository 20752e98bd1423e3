package game

import (
	"strings"

	"github.com/lox/wheelshow/internal/phrases"
)

// Board is the puzzle for one round.
type Board struct {
	Category string    `json:"category"`
	Phrase   string    `json:"phrase"`
	Revealed LetterSet `json:"revealed"`
	Guessed  LetterSet `json:"guessed"`
}

// NewBoard starts a round on the given entry with nothing guessed.
func NewBoard(e phrases.Entry) Board {
	return Board{Category: e.Category, Phrase: strings.ToUpper(e.Text)}
}

// Empty reports whether no puzzle is loaded.
func (b Board) Empty() bool {
	return b.Phrase == ""
}

// Letters returns the distinct letters of the phrase.
func (b Board) Letters() LetterSet {
	return LettersOf(b.Phrase)
}

// Unrevealed returns the phrase letters not yet revealed.
func (b Board) Unrevealed() LetterSet {
	return b.Letters().Without(b.Revealed)
}

// Solved reports whether every distinct letter of the phrase is revealed.
func (b Board) Solved() bool {
	return !b.Empty() && b.Unrevealed() == 0
}

// Count returns how many times letter appears in the phrase.
func (b Board) Count(letter rune) int {
	letter, ok := NormalizeLetter(letter)
	if !ok {
		return 0
	}
	return strings.Count(b.Phrase, string(letter))
}

// RevealAll marks every letter of the phrase as revealed.
func (b Board) RevealAll() Board {
	b.Revealed |= b.Letters()
	return b
}

// Masked renders the phrase with unrevealed letters as '_'. Spaces and
// punctuation are always shown.
func (b Board) Masked() string {
	var sb strings.Builder
	for _, r := range b.Phrase {
		if _, ok := NormalizeLetter(r); ok && !b.Revealed.Has(r) {
			sb.WriteRune('_')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Public returns the board as players see it, with the phrase masked.
func (b Board) Public() Board {
	b.Phrase = b.Masked()
	return b
}
