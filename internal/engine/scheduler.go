package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Plan is the complete schedule for the rest of a round.
//
// Either Finished is set, or the plan carries every pending item of Round:
// two at a time in Pairings, plus at most one Bye.
type Plan struct {
	Round    int
	Pairings []model.Pairing
	Bye      model.ItemID // NoItem when the pending count is even

	Finished bool
	Champion model.ItemID // Sole survivor when Finished, NoItem if none survived
}

// Empty reports whether the plan schedules nothing.
func (p Plan) Empty() bool {
	return len(p.Pairings) == 0 && p.Bye.IsNone()
}

// Scheduler computes pairings from the ledger and the catalog.
//
// The scheduler keeps no state between calls. Everything it returns is a
// function of the persisted state and the shuffler.
type Scheduler struct {
	store    Store
	shuffler Shuffler
	observer Observer
}

// NewScheduler creates a scheduler. A nil observer is replaced by NopObserver.
func NewScheduler(s Store, shuffler Shuffler, observer Observer) *Scheduler {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Scheduler{store: s, shuffler: shuffler, observer: observer}
}

// roundState is what one round's ledger rows say about that round.
type roundState struct {
	paired map[model.ItemID]bool
	closed bool
}

// readRound loads and checks the rows of one round.
//
// Returns LEDGER_CORRUPT for malformed rows, an item recorded twice or rows
// after the round boundary.
func (s *Scheduler) readRound(ctx context.Context, round int) (roundState, error) {
	matches, err := s.store.MatchesInRound(ctx, round)
	if err != nil {
		return roundState{}, fmt.Errorf("read round %d: %w", round, err)
	}

	st := roundState{paired: make(map[model.ItemID]bool)}
	for _, m := range matches {
		if st.closed {
			return roundState{}, model.LedgerCorrupt(round, "record %q after round boundary", m)
		}
		switch m.Kind() {
		case model.KindInvalid:
			return roundState{}, model.LedgerCorrupt(round, "malformed record %q", m)
		case model.KindRoundBoundary:
			st.closed = true
			continue
		}
		for _, id := range m.Participants() {
			if st.paired[id] {
				return roundState{}, model.LedgerCorrupt(round, "item %d appears twice", id)
			}
			st.paired[id] = true
		}
	}
	return st, nil
}

// CurrentRound returns the first round at or after the latest ledger round
// that has no boundary row.
func (s *Scheduler) CurrentRound(ctx context.Context) (int, error) {
	round, err := s.store.LatestRoundNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("current round: %w", err)
	}
	st, err := s.readRound(ctx, round)
	if err != nil {
		return 0, err
	}
	if st.closed {
		round++
	}
	return round, nil
}

// Pending returns the live items that have no record in the given round,
// in ascending id order. It does not write anything, so calling it twice
// without a mutation in between yields the same ids.
func (s *Scheduler) Pending(ctx context.Context, round int) ([]model.ItemID, error) {
	st, err := s.readRound(ctx, round)
	if err != nil {
		return nil, err
	}
	if st.closed {
		return []model.ItemID{}, nil
	}
	live, err := s.store.ListLiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("pending: %w", err)
	}
	return pendingIDs(live, st.paired), nil
}

func pendingIDs(live []model.Item, paired map[model.ItemID]bool) []model.ItemID {
	pending := []model.ItemID{}
	for _, it := range live {
		if !paired[it.ID] {
			pending = append(pending, it.ID)
		}
	}
	return pending
}

// Next returns the plan for the current round.
//
// When the current round has nothing pending, Next appends its boundary row
// and continues with the following round. When at most one live item
// remains, Next writes the finished marker and returns a finished plan.
//
// Next never returns a partial plan: on any error the plan is empty.
func (s *Scheduler) Next(ctx context.Context) (Plan, error) {
	finished, err := s.store.IsTournamentFinished(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("next: %w", err)
	}

	round, err := s.store.LatestRoundNumber(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("next: %w", err)
	}

	for {
		st, err := s.readRound(ctx, round)
		if err != nil {
			return Plan{}, err
		}
		if st.closed {
			round++
			continue
		}

		live, err := s.store.ListLiveItems(ctx)
		if err != nil {
			return Plan{}, fmt.Errorf("next: %w", err)
		}

		if finished || len(live) <= 1 {
			return s.finish(ctx, round, live, finished)
		}

		pending := pendingIDs(live, st.paired)
		if len(pending) == 0 {
			if _, err := s.store.AppendMatch(ctx, model.NewRoundBoundary(round)); err != nil {
				return Plan{}, fmt.Errorf("close round %d: %w", round, err)
			}
			slog.Info("round completed", "round", round, "live", len(live))
			s.observer.RoundCompleted(round, len(live))
			round++
			continue
		}

		return s.plan(round, pending), nil
	}
}

// plan shuffles the pending ids and pairs them two at a time.
func (s *Scheduler) plan(round int, pending []model.ItemID) Plan {
	s.shuffler.Shuffle(round, pending)

	p := Plan{Round: round, Pairings: make([]model.Pairing, 0, len(pending)/2)}
	for i := 0; i+1 < len(pending); i += 2 {
		p.Pairings = append(p.Pairings, model.Pairing{Round: round, A: pending[i], B: pending[i+1]})
	}
	if len(pending)%2 == 1 {
		p.Bye = pending[len(pending)-1]
	}

	slog.Debug("round planned",
		"round", round,
		"pairings", len(p.Pairings),
		"bye", int64(p.Bye),
	)
	return p
}

func (s *Scheduler) finish(ctx context.Context, round int, live []model.Item, already bool) (Plan, error) {
	champion := model.NoItem
	if len(live) == 1 {
		champion = live[0].ID
	}

	if !already {
		if err := s.store.MarkFinished(ctx, round); err != nil {
			return Plan{}, fmt.Errorf("finish: %w", err)
		}
		slog.Info("tournament finished", "round", round, "champion", int64(champion))
		s.observer.TournamentFinished(round, champion)
	}

	return Plan{Round: round, Finished: true, Champion: champion}, nil
}
