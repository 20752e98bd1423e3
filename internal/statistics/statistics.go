package statistics

import (
	"fmt"
	"math"
	"sort"
)

// GameResult is the outcome of one simulated session.
type GameResult struct {
	Seed      int64 // RNG seed for this game (for replay)
	Winnings  []int // total bank per seat
	Winner    int   // seat at the top of the standings
	RoundWins []int // rounds solved per seat
	Spins     int
	Bankrupts int
}

// SeatStats tracks one seat across every game.
type SeatStats struct {
	Name      string
	Games     int
	Wins      int
	RoundsWon int
	Sum       float64
	Sum2      float64   // Sum of squares for variance calculation
	Values    []float64 // Store all values for median/percentile calculation
}

// Statistics aggregates simulated games.
type Statistics struct {
	Games     int
	Rounds    int
	Spins     int
	Bankrupts int
	Seats     []SeatStats
}

// New creates empty statistics for the named seats.
func New(names []string) *Statistics {
	s := &Statistics{Seats: make([]SeatStats, len(names))}
	for i, name := range names {
		s.Seats[i].Name = name
	}
	return s
}

// Add incorporates one game.
func (s *Statistics) Add(result GameResult) {
	s.Games++
	s.Spins += result.Spins
	s.Bankrupts += result.Bankrupts

	for seat := range s.Seats {
		ss := &s.Seats[seat]
		ss.Games++

		var v float64
		if seat < len(result.Winnings) {
			v = float64(result.Winnings[seat])
		}
		ss.Sum += v
		ss.Sum2 += v * v
		ss.Values = append(ss.Values, v)

		if seat < len(result.RoundWins) {
			ss.RoundsWon += result.RoundWins[seat]
			s.Rounds += result.RoundWins[seat]
		}
	}
	if result.Winner >= 0 && result.Winner < len(s.Seats) {
		s.Seats[result.Winner].Wins++
	}
}

// WinRate returns the fraction of games the seat won.
func (ss *SeatStats) WinRate() float64 {
	if ss.Games == 0 {
		return 0
	}
	return float64(ss.Wins) / float64(ss.Games)
}

// Mean returns the average winnings per game.
func (ss *SeatStats) Mean() float64 {
	if ss.Games == 0 {
		return 0
	}
	return ss.Sum / float64(ss.Games)
}

// Variance returns the sample variance of winnings.
func (ss *SeatStats) Variance() float64 {
	if ss.Games < 2 {
		return 0
	}
	mean := ss.Mean()
	return (ss.Sum2 - float64(ss.Games)*mean*mean) / float64(ss.Games-1)
}

// StdDev returns the sample standard deviation of winnings.
func (ss *SeatStats) StdDev() float64 {
	return math.Sqrt(ss.Variance())
}

// StdError returns the standard error of the mean
func (ss *SeatStats) StdError() float64 {
	if ss.Games == 0 {
		return 0
	}
	return ss.StdDev() / math.Sqrt(float64(ss.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (ss *SeatStats) ConfidenceInterval95() (float64, float64) {
	mean := ss.Mean()
	margin := 1.96 * ss.StdError()
	return mean - margin, mean + margin
}

// Median returns the median winnings.
func (ss *SeatStats) Median() float64 {
	return ss.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (ss *SeatStats) Percentile(p float64) float64 {
	if len(ss.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(ss.Values))
	copy(sorted, ss.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the totals agree with each other.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	wins := 0
	for _, ss := range s.Seats {
		if ss.Games != s.Games {
			return fmt.Errorf("seat %s played %d games, expected %d", ss.Name, ss.Games, s.Games)
		}
		if len(ss.Values) != ss.Games {
			return fmt.Errorf("seat %s: values array length (%d) does not match games count (%d)",
				ss.Name, len(ss.Values), ss.Games)
		}
		wins += ss.Wins
	}
	if wins != s.Games {
		return fmt.Errorf("total wins (%d) does not match total games (%d)", wins, s.Games)
	}
	return nil
}
