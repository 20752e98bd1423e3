package game

import (
	"slices"

	"github.com/lox/wheelshow/internal/wheel"
)

// Settings are the tunable rules of a session.
type Settings struct {
	RoundsTotal   int `json:"roundsTotal"`
	VowelPrice    int `json:"vowelPrice"`
	HostLineLimit int `json:"hostLineLimit"`
}

// DefaultSettings returns three rounds with $250 vowels.
func DefaultSettings() Settings {
	return Settings{RoundsTotal: 3, VowelPrice: 250, HostLineLimit: 50}
}

// WheelState is the wheel as seen by players and renderers.
type WheelState struct {
	Wedges     []wheel.Wedge `json:"wedges"`
	LastIndex  int           `json:"lastIndex"` // -1 until a cash wedge is landed this turn
	LastResult wheel.Wedge   `json:"lastResult"`
}

// HostState is the running commentary.
type HostState struct {
	Lines []string `json:"lines"`
}

// State is the whole session. The engine owns the live copy; everything
// handed out is a deep copy from Snapshot.
type State struct {
	GameID             string     `json:"gameId"`
	Phase              Phase      `json:"phase"`
	RoundIndex         int        `json:"roundIndex"`
	RoundsTotal        int        `json:"roundsTotal"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	SpinToken          uint64     `json:"spinToken"`
	Turn               uint64     `json:"turn"`
	Players            []Player   `json:"players"`
	Board              Board      `json:"board"`
	Wheel              WheelState `json:"wheel"`
	Host               HostState  `json:"host"`
	Settings           Settings   `json:"settings"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Players = slices.Clone(s.Players)
	s.Wheel.Wedges = slices.Clone(s.Wheel.Wedges)
	s.Host.Lines = slices.Clone(s.Host.Lines)
	return s
}

// CurrentPlayer returns the player whose turn it is.
func (s State) CurrentPlayer() Player {
	return s.Players[s.CurrentPlayerIndex]
}

// Public returns a copy safe to show players: the phrase is masked unless
// the round is over.
func (s State) Public() State {
	c := s.Clone()
	if c.Phase != RoundEnd && c.Phase != GameEnd {
		c.Board = c.Board.Public()
	}
	return c
}

// Standings returns players ordered by total bank, highest first. Ties keep
// seat order.
func (s State) Standings() []Player {
	out := slices.Clone(s.Players)
	slices.SortStableFunc(out, func(a, b Player) int {
		return b.TotalBank - a.TotalBank
	})
	return out
}

// TurnRef identifies one hand-off of control to a player. Computer turns carry
// it so stale work can be recognised.
type TurnRef struct {
	Turn   uint64
	Player int
	Round  int
}

// TurnRef returns the reference for the turn in progress.
func (s State) TurnRef() TurnRef {
	return TurnRef{Turn: s.Turn, Player: s.CurrentPlayerIndex, Round: s.RoundIndex}
}
