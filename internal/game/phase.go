package game

// Phase is the state machine position of a session.
type Phase int

const (
	Title Phase = iota
	TurnHuman
	TurnAI
	Spin
	AwaitAction
	AwaitConsonant
	BuyVowel
	RoundEnd
	GameEnd
)

func (p Phase) String() string {
	return [...]string{
		"title", "turn_human", "turn_ai", "spin", "await_action",
		"await_consonant", "buy_vowel", "round_end", "game_end",
	}[p]
}

// MarshalText lets Phase travel as its name in JSON snapshots.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ChoosingMove reports whether the current player may spin, buy a vowel or
// solve.
func (p Phase) ChoosingMove() bool {
	return p == TurnHuman || p == TurnAI || p == AwaitAction
}

// InRound reports whether a puzzle is being played.
func (p Phase) InRound() bool {
	return p != Title && p != RoundEnd && p != GameEnd
}
