package statistics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SeatReport is the per-seat summary written by WriteReport.
type SeatReport struct {
	Name      string     `json:"name"`
	Wins      int        `json:"wins"`
	WinRate   float64    `json:"winRate"`
	RoundsWon int        `json:"roundsWon"`
	Mean      float64    `json:"mean"`
	Median    float64    `json:"median"`
	StdDev    float64    `json:"stdDev"`
	CI95      [2]float64 `json:"ci95"`
}

// Report is the machine-readable form of a simulation run.
type Report struct {
	Seed      int64        `json:"seed"`
	Games     int          `json:"games"`
	Rounds    int          `json:"rounds"`
	Spins     int          `json:"spins"`
	Bankrupts int          `json:"bankrupts"`
	Seats     []SeatReport `json:"seats"`
}

// NewReport summarises s. seed is the run seed, for replay.
func NewReport(s *Statistics, seed int64) Report {
	r := Report{
		Seed:      seed,
		Games:     s.Games,
		Rounds:    s.Rounds,
		Spins:     s.Spins,
		Bankrupts: s.Bankrupts,
		Seats:     make([]SeatReport, len(s.Seats)),
	}
	for i := range s.Seats {
		ss := &s.Seats[i]
		lo, hi := ss.ConfidenceInterval95()
		r.Seats[i] = SeatReport{
			Name:      ss.Name,
			Wins:      ss.Wins,
			WinRate:   ss.WinRate(),
			RoundsWon: ss.RoundsWon,
			Mean:      ss.Mean(),
			Median:    ss.Median(),
			StdDev:    ss.StdDev(),
			CI95:      [2]float64{lo, hi},
		}
	}
	return r
}

// WriteReport writes r as indented JSON. The file is written to a temporary
// sibling and renamed into place, so readers see the old report or the new
// one and never a partial write.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}
