package engine

import (
	"context"
	"fmt"
)

// TotalRounds returns the number of rounds a bracket of n items needs when
// every pairing produces a survivor: ceil(log2 n), 0 for n <= 1.
func TotalRounds(n int) int {
	rounds := 0
	for n > 1 {
		n = (n + 1) / 2
		rounds++
	}
	return rounds
}

// PairingsInRound returns how many pairings round r of an n-item bracket
// holds when every pairing produces a survivor. Byes are not counted.
func PairingsInRound(n, r int) int {
	if r < 1 {
		return 0
	}
	live := n
	for i := 1; i < r; i++ {
		live = (live + 1) / 2
	}
	if live <= 1 {
		return 0
	}
	return live / 2
}

// ExpectedPairings returns the total number of pairings of an n-item
// bracket when every pairing produces a survivor. Each pairing removes
// exactly one item, so this is n-1.
func ExpectedPairings(n int) int {
	total := 0
	for r := 1; r <= TotalRounds(n); r++ {
		total += PairingsInRound(n, r)
	}
	return total
}

// Progress summarizes where a tournament stands.
type Progress struct {
	Round       int  `json:"round"`
	TotalRounds int  `json:"total_rounds"`
	Items       int  `json:"items"`
	Live        int  `json:"live"`
	Pending     int  `json:"pending"`
	Resolved    int  `json:"resolved"` // Decided pairings so far, byes excluded
	Expected    int  `json:"expected"` // Pairings of a bracket without render failures
	Finished    bool `json:"finished"`
}

// Percent returns resolved pairings as a share of expected pairings.
func (p Progress) Percent() float64 {
	if p.Finished || p.Expected == 0 {
		return 100
	}
	pct := float64(p.Resolved) * 100 / float64(p.Expected)
	if pct > 100 {
		return 100
	}
	return pct
}

// ReadProgress computes the progress of the tournament in s.
// It only reads; the current round is not closed as a side effect.
func ReadProgress(ctx context.Context, s Store) (Progress, error) {
	sched := NewScheduler(s, SortedShuffler{}, nil)

	total, live, err := s.CountItems(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("progress: %w", err)
	}
	finished, err := s.IsTournamentFinished(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("progress: %w", err)
	}
	round, err := sched.CurrentRound(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("progress: %w", err)
	}
	matches, err := s.ReadAllMatches(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("progress: %w", err)
	}

	p := Progress{
		Round:       round,
		TotalRounds: TotalRounds(total),
		Items:       total,
		Live:        live,
		Expected:    ExpectedPairings(total),
		Finished:    finished,
	}
	for _, m := range matches {
		if len(m.Participants()) == 2 {
			p.Resolved++
		}
	}

	if !finished {
		pending, err := sched.Pending(ctx, round)
		if err != nil {
			return Progress{}, fmt.Errorf("progress: %w", err)
		}
		p.Pending = len(pending)
	}
	return p, nil
}
