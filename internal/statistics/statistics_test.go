package statistics

import (
	"math"
	"testing"
)

func TestSeatStats_Empty(t *testing.T) {
	ss := &SeatStats{}

	if ss.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", ss.Mean())
	}
	if ss.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", ss.Variance())
	}
	if ss.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", ss.StdError())
	}
	if ss.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", ss.Median())
	}
	if ss.WinRate() != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", ss.WinRate())
	}
}

func TestStatistics_Add(t *testing.T) {
	stats := New([]string{"Ada", "Max"})
	stats.Add(GameResult{Seed: 1, Winnings: []int{1000, 0}, Winner: 0, RoundWins: []int{2, 1}, Spins: 10, Bankrupts: 1})
	stats.Add(GameResult{Seed: 2, Winnings: []int{3000, 5000}, Winner: 1, RoundWins: []int{1, 2}, Spins: 14})
	stats.Add(GameResult{Seed: 3, Winnings: []int{2000, 500}, Winner: 0, RoundWins: []int{3, 0}, Spins: 6})

	if stats.Games != 3 {
		t.Errorf("Expected 3 games, got %d", stats.Games)
	}
	if stats.Spins != 30 {
		t.Errorf("Expected 30 spins, got %d", stats.Spins)
	}
	if stats.Rounds != 9 {
		t.Errorf("Expected 9 rounds, got %d", stats.Rounds)
	}

	ada := stats.Seats[0]
	if ada.Wins != 2 {
		t.Errorf("Expected Ada to win 2 games, got %d", ada.Wins)
	}
	if ada.RoundsWon != 6 {
		t.Errorf("Expected Ada to win 6 rounds, got %d", ada.RoundsWon)
	}
	if ada.Mean() != 2000 {
		t.Errorf("Expected mean of 2000, got %f", ada.Mean())
	}
	if ada.Median() != 2000 {
		t.Errorf("Expected median of 2000, got %f", ada.Median())
	}
	if math.Abs(ada.StdDev()-1000) > 1e-9 {
		t.Errorf("Expected stddev of 1000, got %f", ada.StdDev())
	}
	if math.Abs(ada.WinRate()-2.0/3.0) > 1e-9 {
		t.Errorf("Expected win rate of 2/3, got %f", ada.WinRate())
	}

	lo, hi := ada.ConfidenceInterval95()
	if lo >= ada.Mean() || hi <= ada.Mean() {
		t.Errorf("Expected confidence interval around mean, got [%f, %f]", lo, hi)
	}

	if err := stats.Validate(); err != nil {
		t.Errorf("Expected valid statistics, got %v", err)
	}
}

func TestSeatStats_Percentile(t *testing.T) {
	ss := &SeatStats{Values: []float64{400, 100, 300, 200}}

	if got := ss.Percentile(0); got != 100 {
		t.Errorf("Expected p0 of 100, got %f", got)
	}
	if got := ss.Percentile(1); got != 400 {
		t.Errorf("Expected p100 of 400, got %f", got)
	}
	if got := ss.Median(); got != 250 {
		t.Errorf("Expected median of 250, got %f", got)
	}
}

func TestStatistics_Validate(t *testing.T) {
	if err := New([]string{"Ada"}).Validate(); err == nil {
		t.Error("Expected error for empty statistics")
	}

	stats := New([]string{"Ada", "Max"})
	stats.Add(GameResult{Winnings: []int{100, 0}, Winner: 0})
	stats.Seats[1].Wins++
	if err := stats.Validate(); err == nil {
		t.Error("Expected error when wins exceed games")
	}
}
