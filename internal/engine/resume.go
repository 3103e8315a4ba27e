package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// State is the position a tournament resumes from, derived entirely from
// the ledger and the catalog.
type State struct {
	Round    int
	Finished bool
	Items    int
	Live     int
	Pending  []model.ItemID
}

// Resume reconstructs the tournament position at start-up.
//
// The ledger is audited first; the first finding is returned as a fatal
// LEDGER_CORRUPT error and nothing is repaired. A finished tournament is
// reported as such without consulting the scheduler. Resume never writes.
func Resume(ctx context.Context, s Store, sched *Scheduler) (State, error) {
	total, live, err := s.CountItems(ctx)
	if err != nil {
		return State{}, fmt.Errorf("resume: %w", err)
	}
	if total == 0 {
		return State{}, model.EmptyCatalog()
	}

	findings, err := Audit(ctx, s)
	if err != nil {
		return State{}, fmt.Errorf("resume: %w", err)
	}
	if len(findings) > 0 {
		for _, f := range findings[1:] {
			slog.Error("ledger inconsistency", "error", f)
		}
		return State{}, findings[0]
	}

	st := State{Items: total, Live: live, Pending: []model.ItemID{}}

	st.Finished, err = s.IsTournamentFinished(ctx)
	if err != nil {
		return State{}, fmt.Errorf("resume: %w", err)
	}
	if st.Finished {
		st.Round, err = s.LatestRoundNumber(ctx)
		if err != nil {
			return State{}, fmt.Errorf("resume: %w", err)
		}
		slog.Info("tournament resumed", "round", st.Round, "live", live, "finished", true)
		return st, nil
	}

	st.Round, err = sched.CurrentRound(ctx)
	if err != nil {
		return State{}, err
	}
	st.Pending, err = sched.Pending(ctx, st.Round)
	if err != nil {
		return State{}, err
	}

	slog.Info("tournament resumed",
		"round", st.Round,
		"live", live,
		"pending", len(st.Pending),
	)
	return st, nil
}
