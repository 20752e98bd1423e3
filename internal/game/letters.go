package game

import (
	"math/bits"
	"strings"
	"unicode"
)

// Vowels are the letters sold by BuyVowel rather than called after a spin.
const Vowels = "AEIOU"

// ConsonantFrequency lists consonants from most to least common in English
// phrases. Computer players call them in this order.
const ConsonantFrequency = "RSTLNCDMHGPBFYWKVXZJQ"

// LetterSet is a set of the letters A-Z packed one bit per letter, so boards
// copy and compare by value.
type LetterSet uint32

const allLetters LetterSet = 1<<26 - 1

// NormalizeLetter upper-cases r and reports whether it is a letter A-Z.
func NormalizeLetter(r rune) (rune, bool) {
	r = unicode.ToUpper(r)
	return r, r >= 'A' && r <= 'Z'
}

// IsVowel reports whether r is one of A, E, I, O, U (either case).
func IsVowel(r rune) bool {
	r, ok := NormalizeLetter(r)
	return ok && strings.ContainsRune(Vowels, r)
}

// IsConsonant reports whether r is a letter that is not a vowel.
func IsConsonant(r rune) bool {
	r, ok := NormalizeLetter(r)
	return ok && !strings.ContainsRune(Vowels, r)
}

func bit(r rune) LetterSet {
	r, ok := NormalizeLetter(r)
	if !ok {
		return 0
	}
	return 1 << uint(r-'A')
}

// LettersOf returns the distinct letters of s.
func LettersOf(s string) LetterSet {
	var set LetterSet
	for _, r := range s {
		set |= bit(r)
	}
	return set
}

// Has reports whether r is in the set.
func (s LetterSet) Has(r rune) bool {
	b := bit(r)
	return b != 0 && s&b != 0
}

// With returns the set plus r. Non-letters are ignored.
func (s LetterSet) With(r rune) LetterSet {
	return s | bit(r)
}

// Without returns s minus every letter in other.
func (s LetterSet) Without(other LetterSet) LetterSet {
	return s &^ other
}

// Len returns the number of letters in the set.
func (s LetterSet) Len() int {
	return bits.OnesCount32(uint32(s & allLetters))
}

// Vowels returns the subset of vowels.
func (s LetterSet) Vowels() LetterSet {
	return s & LettersOf(Vowels)
}

// Consonants returns the subset of consonants.
func (s LetterSet) Consonants() LetterSet {
	return s & allLetters &^ LettersOf(Vowels)
}

// Letters returns the members in alphabetical order.
func (s LetterSet) Letters() []rune {
	out := make([]rune, 0, s.Len())
	for r := 'A'; r <= 'Z'; r++ {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s LetterSet) String() string {
	return string(s.Letters())
}

// MarshalText encodes the set as its letters, e.g. "ACT".
func (s LetterSet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PickKind says which kind of letter a pick resolves.
type PickKind int

const (
	PickConsonant PickKind = iota
	PickVowel
)

func (k PickKind) String() string {
	return [...]string{"consonant", "vowel"}[k]
}

// Resolution is the outcome of resolving one letter against a board.
type Resolution struct {
	Letter rune
	Count  int   // occurrences in the phrase
	Board  Board // board after the guess is recorded
	Delta  int   // change to the acting player's round bank
	Solved bool  // every distinct letter is now revealed
}

// Resolve applies a letter guess to a board without touching any other
// state. Consonants pay count*wedgeValue when wedgeValue is positive; vowels
// pay nothing because their price is charged when the vowel is bought.
func Resolve(b Board, kind PickKind, letter rune, wedgeValue int) (Resolution, error) {
	letter, ok := NormalizeLetter(letter)
	if !ok {
		return Resolution{}, ReasonNotALetter
	}
	switch kind {
	case PickConsonant:
		if IsVowel(letter) {
			return Resolution{}, ReasonNotConsonant
		}
	case PickVowel:
		if !IsVowel(letter) {
			return Resolution{}, ReasonNotVowel
		}
	}
	if b.Guessed.Has(letter) {
		return Resolution{}, ReasonAlreadyGuessed
	}

	count := b.Count(letter)
	b.Guessed = b.Guessed.With(letter)
	if count > 0 {
		b.Revealed = b.Revealed.With(letter)
	}

	delta := 0
	if kind == PickConsonant && wedgeValue > 0 {
		delta = wedgeValue * count
	}

	return Resolution{
		Letter: letter,
		Count:  count,
		Board:  b,
		Delta:  delta,
		Solved: b.Solved(),
	}, nil
}
