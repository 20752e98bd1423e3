package game

import "fmt"

// PlayerType distinguishes seats driven by a person from computer seats.
type PlayerType int

const (
	Human PlayerType = iota
	AI
)

func (t PlayerType) String() string {
	return [...]string{"human", "ai"}[t]
}

// MarshalText encodes the type by name.
func (t PlayerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParsePlayerType parses "human" or "ai".
func ParsePlayerType(s string) (PlayerType, error) {
	switch s {
	case "human":
		return Human, nil
	case "ai", "computer", "bot":
		return AI, nil
	default:
		return Human, fmt.Errorf("unknown player type %q", s)
	}
}

// Personality names a pacing profile for a computer player.
type Personality string

const (
	Steady     Personality = "steady"
	Quick      Personality = "quick"
	Deliberate Personality = "deliberate"
)

// PacingScale multiplies a computer player's artificial delays.
func (p Personality) PacingScale() float64 {
	switch p {
	case Quick:
		return 0.5
	case Deliberate:
		return 1.75
	default:
		return 1
	}
}

// Valid reports whether p is empty or a known personality.
func (p Personality) Valid() bool {
	switch p {
	case "", Steady, Quick, Deliberate:
		return true
	}
	return false
}

// Player is one seat in the session.
type Player struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Type        PlayerType  `json:"type"`
	Personality Personality `json:"personality,omitempty"`
	RoundBank   int         `json:"roundBank"`
	TotalBank   int         `json:"totalBank"`
}

// IsAI reports whether the seat is computer controlled.
func (p Player) IsAI() bool {
	return p.Type == AI
}

// Seat describes a roster entry before the session starts.
type Seat struct {
	Name        string
	Type        PlayerType
	Personality Personality
}

// DefaultRoster is one human and two computer players.
func DefaultRoster() []Seat {
	return []Seat{
		{Name: "You", Type: Human},
		{Name: "Ada", Type: AI, Personality: Steady},
		{Name: "Max", Type: AI, Personality: Quick},
	}
}

func seatPlayers(roster []Seat) []Player {
	players := make([]Player, len(roster))
	for i, s := range roster {
		players[i] = Player{ID: i + 1, Name: s.Name, Type: s.Type, Personality: s.Personality}
	}
	return players
}
