package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// OutcomeFor maps a decision on a pairing to the writes it causes.
//
//	WinnerIsA          point for A, B eliminated, row winner A
//	WinnerIsB          point for B, A eliminated, row winner B
//	AFailedToRender    no point, A eliminated, row winner B
//	BFailedToRender    no point, B eliminated, row winner A
//	BothFailedToRender no point, both eliminated, row winner none
func OutcomeFor(p model.Pairing, d model.Decision) (model.Outcome, error) {
	if p.A.IsNone() || p.B.IsNone() || p.A == p.B {
		return model.Outcome{}, fmt.Errorf("resolve: invalid pairing %d vs %d", p.A, p.B)
	}

	m := model.Match{RoundNumber: p.Round, ParticipantA: p.A, ParticipantB: p.B}
	out := model.Outcome{}

	switch d {
	case model.WinnerIsA:
		m.Winner = p.A
		out.Winner = p.A
		out.Losers = []model.ItemID{p.B}
	case model.WinnerIsB:
		m.Winner = p.B
		out.Winner = p.B
		out.Losers = []model.ItemID{p.A}
	case model.AFailedToRender:
		m.Winner = p.B
		out.Losers = []model.ItemID{p.A}
	case model.BFailedToRender:
		m.Winner = p.A
		out.Losers = []model.ItemID{p.B}
	case model.BothFailedToRender:
		out.Losers = []model.ItemID{p.A, p.B}
	default:
		return model.Outcome{}, fmt.Errorf("resolve: unknown decision %d", int(d))
	}

	out.Match = m
	return out, nil
}

// Resolver commits decisions to the store.
type Resolver struct {
	store    Store
	observer Observer
}

// NewResolver creates a resolver. A nil observer is replaced by NopObserver.
func NewResolver(s Store, observer Observer) *Resolver {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Resolver{store: s, observer: observer}
}

// Resolve applies a decision to a pairing as one atomic unit and returns
// the committed outcome with its ledger seq filled in.
func (r *Resolver) Resolve(ctx context.Context, p model.Pairing, d model.Decision) (model.Outcome, error) {
	out, err := OutcomeFor(p, d)
	if err != nil {
		return model.Outcome{}, err
	}

	seq, err := r.store.CommitOutcome(ctx, out)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("resolve round %d pairing %d vs %d: %w", p.Round, p.A, p.B, err)
	}
	out.Match.Seq = seq

	if d.IsRenderFailure() {
		slog.Warn("render failure",
			"round", p.Round,
			"a", int64(p.A),
			"b", int64(p.B),
			"decision", d.String(),
		)
	}
	slog.Info("pairing resolved",
		"round", p.Round,
		"a", int64(p.A),
		"b", int64(p.B),
		"decision", d.String(),
		"winner", int64(out.Match.Winner),
	)

	r.observer.PairingResolved(d, out)
	return out, nil
}

// Bye records the sole unpaired item of a round as advancing without an
// opponent. Byes award no rating point.
func (r *Resolver) Bye(ctx context.Context, round int, id model.ItemID) (model.Outcome, error) {
	if id.IsNone() {
		return model.Outcome{}, fmt.Errorf("bye: missing item")
	}

	out := model.Outcome{Match: model.NewBye(round, id)}
	seq, err := r.store.CommitOutcome(ctx, out)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("bye round %d item %d: %w", round, id, err)
	}
	out.Match.Seq = seq

	slog.Info("bye recorded", "round", round, "item", int64(id))
	r.observer.ByeRecorded(round, id)
	return out, nil
}
