// Package wheel defines the fixed table of wheel outcomes.
//
// The layout is generated once from a repeating pattern of cash
// denominations, with a few indices forced to penalty wedges. Renderers
// draw the same table and report back only the index they landed on.
package wheel

import "fmt"

// Kind classifies what happens when the wheel stops on a wedge.
type Kind int

const (
	Cash Kind = iota
	Bankrupt
	LoseTurn
)

func (k Kind) String() string {
	return [...]string{"cash", "bankrupt", "lose_turn"}[k]
}

// MarshalText lets Kind travel as a readable string in JSON snapshots.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Wedge is one segment of the wheel. Value is only meaningful for Cash.
type Wedge struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	Value int    `json:"value,omitempty"`
}

// IsCash reports whether landing here lets the player call a consonant.
func (w Wedge) IsCash() bool {
	return w.Kind == Cash
}

const (
	// Count is the number of wedges on the wheel.
	Count = 24

	bankruptA = 6
	bankruptB = 18
	loseTurn  = 12
)

// denominations repeats around the wheel; the special indices overwrite it.
var denominations = [12]int{500, 900, 700, 300, 800, 550, 400, 500, 600, 350, 650, 2500}

var standard = build()

func build() []Wedge {
	wedges := make([]Wedge, Count)
	for i := range wedges {
		v := denominations[i%len(denominations)]
		wedges[i] = Wedge{Kind: Cash, Label: fmt.Sprintf("$%d", v), Value: v}
	}
	wedges[bankruptA] = Wedge{Kind: Bankrupt, Label: "BANKRUPT"}
	wedges[bankruptB] = Wedge{Kind: Bankrupt, Label: "BANKRUPT"}
	wedges[loseTurn] = Wedge{Kind: LoseTurn, Label: "LOSE A TURN"}
	return wedges
}

// Standard returns a copy of the standard wheel layout.
func Standard() []Wedge {
	out := make([]Wedge, len(standard))
	copy(out, standard)
	return out
}

// At returns the wedge at index i and whether i is in range.
func At(wedges []Wedge, i int) (Wedge, bool) {
	if i < 0 || i >= len(wedges) {
		return Wedge{}, false
	}
	return wedges[i], true
}
