// Package phrases holds the (category, phrase) pairs a round is drawn from.
package phrases

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"unicode"
)

// Entry is one puzzle: the category shown to players and the hidden phrase.
type Entry struct {
	Category string
	Text     string
}

// Bank is an immutable set of entries with uniform random selection.
type Bank struct {
	entries []Entry
}

var defaultEntries = []Entry{
	{"THING", "CAT"},
	{"PHRASE", "BETTER LATE THAN NEVER"},
	{"PLACE", "THE GRAND CANYON"},
	{"FOOD & DRINK", "HOT BUTTERED POPCORN"},
	{"EVENT", "SURPRISE BIRTHDAY PARTY"},
	{"PERSON", "FRIENDLY NEIGHBORHOOD MAIL CARRIER"},
	{"FUN & GAMES", "BUILDING SAND CASTLES"},
	{"ON THE MAP", "ROCKY MOUNTAINS"},
	{"WHAT ARE YOU DOING?", "WATCHING THE SUNSET"},
	{"SONG TITLE", "TWINKLE TWINKLE LITTLE STAR"},
	{"PHRASE", "PIECE OF CAKE"},
	{"THING", "GRANDFATHER CLOCK"},
}

var (
	ErrEmptyBank = errors.New("phrase bank has no entries")
	ErrNoLetters = errors.New("phrase has no letters")
)

// Default returns the built-in phrase bank.
func Default() *Bank {
	b, err := New(defaultEntries)
	if err != nil {
		panic(fmt.Sprintf("built-in phrase bank is invalid: %v", err))
	}
	return b
}

// New validates and normalizes entries into a bank. Phrases and categories
// are upper-cased; surrounding and repeated inner whitespace is collapsed.
func New(entries []Entry) (*Bank, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyBank
	}
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		n, err := Normalize(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%q): %w", i, e.Text, err)
		}
		out = append(out, n)
	}
	return &Bank{entries: out}, nil
}

// Normalize upper-cases an entry and checks that the phrase can be played.
func Normalize(e Entry) (Entry, error) {
	text := strings.Join(strings.Fields(strings.ToUpper(e.Text)), " ")
	category := strings.Join(strings.Fields(strings.ToUpper(e.Category)), " ")

	letters := 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
		case unicode.IsLetter(r):
			return Entry{}, fmt.Errorf("unsupported letter %q", r)
		}
	}
	if letters == 0 {
		return Entry{}, ErrNoLetters
	}
	if category == "" {
		category = "PHRASE"
	}
	return Entry{Category: category, Text: text}, nil
}

// Len returns the number of entries.
func (b *Bank) Len() int {
	return len(b.entries)
}

// Pick draws one entry uniformly at random.
func (b *Bank) Pick(rng *rand.Rand) Entry {
	return b.entries[rng.IntN(len(b.entries))]
}
