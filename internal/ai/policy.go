// Package ai plays computer seats.
//
// Decide is a pure function of a snapshot. Runner turns decisions into
// engine intents with human-looking pauses between them, one cancellable
// Task per turn.
package ai

import (
	"github.com/lox/wheelshow/internal/game"
)

// Move is the kind of action a computer player takes at the start of a
// move.
type Move int

const (
	MoveSpin Move = iota
	MoveBuyVowel
	MoveSolve
)

func (m Move) String() string {
	return [...]string{"spin", "buy_vowel", "solve"}[m]
}

// Decision is the outcome of Decide.
type Decision struct {
	Move   Move
	Letter rune   // vowel to call after MoveBuyVowel
	Guess  string // phrase for MoveSolve
}

// solveThreshold is the number of unrevealed distinct letters at or below
// which a computer player solves.
const solveThreshold = 2

// Decide picks the current player's move: solve when the board is nearly
// done, buy a vowel when it can, otherwise spin. Computer players know the
// phrase, so a solve is always right.
func Decide(s game.State) Decision {
	b := s.Board
	unrevealed := b.Unrevealed()
	if unrevealed.Len() <= solveThreshold || unrevealed.Consonants() == 0 {
		return Decision{Move: MoveSolve, Guess: b.Phrase}
	}

	p := s.CurrentPlayer()
	if p.RoundBank >= s.Settings.VowelPrice && unrevealed.Vowels() != 0 {
		if v, ok := ChooseVowel(b); ok {
			return Decision{Move: MoveBuyVowel, Letter: v}
		}
	}
	return Decision{Move: MoveSpin}
}

// ChooseVowel returns the first vowel in A E I O U not yet guessed.
func ChooseVowel(b game.Board) (rune, bool) {
	return firstUnguessed(b, game.Vowels)
}

// ChooseConsonant returns the most common consonant not yet guessed.
func ChooseConsonant(b game.Board) (rune, bool) {
	return firstUnguessed(b, game.ConsonantFrequency)
}

func firstUnguessed(b game.Board, order string) (rune, bool) {
	for _, r := range order {
		if !b.Guessed.Has(r) {
			return r, true
		}
	}
	return 0, false
}
