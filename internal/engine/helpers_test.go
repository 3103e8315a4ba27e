package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isaaclb98/find-my-fav/internal/model"
	"github.com/isaaclb98/find-my-fav/internal/store"
)

// setupTestStore opens a store in a temp dir with n items, ids 1..n.
func setupTestStore(t *testing.T, n int) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("item-%02d.jpg", i+1)
	}
	if n > 0 {
		_, err = s.InsertItems(context.Background(), refs)
		require.NoError(t, err)
	}
	return s
}

// lowerIDWins is a presenter that prefers the lower id, reports render
// failures for the ids in failing and stops after stopAfter decisions
// when stopAfter > 0.
type lowerIDWins struct {
	failing   map[model.ItemID]bool
	stopAfter int
	calls     int
	seen      []model.Pairing
}

func (p *lowerIDWins) PresentPairing(_ context.Context, a, b model.Item) (model.Decision, error) {
	if p.stopAfter > 0 && p.calls == p.stopAfter {
		return 0, ErrStopped
	}
	p.calls++
	p.seen = append(p.seen, model.Pairing{A: a.ID, B: b.ID})

	switch {
	case p.failing[a.ID] && p.failing[b.ID]:
		return model.BothFailedToRender, nil
	case p.failing[a.ID]:
		return model.AFailedToRender, nil
	case p.failing[b.ID]:
		return model.BFailedToRender, nil
	case a.ID < b.ID:
		return model.WinnerIsA, nil
	default:
		return model.WinnerIsB, nil
	}
}

// ledgerStrings renders the whole ledger with Match.String.
func ledgerStrings(t *testing.T, s *store.Store) []string {
	t.Helper()
	matches, err := s.ReadAllMatches(context.Background())
	require.NoError(t, err)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.String()
	}
	return out
}

// resolveAll commits every entry of a plan with lower id winning.
func resolveAll(t *testing.T, r *Resolver, plan Plan) {
	t.Helper()
	ctx := context.Background()
	if !plan.Bye.IsNone() {
		_, err := r.Bye(ctx, plan.Round, plan.Bye)
		require.NoError(t, err)
	}
	for _, p := range plan.Pairings {
		d := model.WinnerIsA
		if p.B < p.A {
			d = model.WinnerIsB
		}
		_, err := r.Resolve(ctx, p, d)
		require.NoError(t, err)
	}
}

// recordingObserver captures engine events.
type recordingObserver struct {
	resolved []model.Decision
	byes     []model.ItemID
	rounds   []int
	finished []model.ItemID
}

func (o *recordingObserver) PairingResolved(d model.Decision, _ model.Outcome) {
	o.resolved = append(o.resolved, d)
}

func (o *recordingObserver) ByeRecorded(_ int, id model.ItemID) {
	o.byes = append(o.byes, id)
}

func (o *recordingObserver) RoundCompleted(round, _ int) {
	o.rounds = append(o.rounds, round)
}

func (o *recordingObserver) TournamentFinished(_ int, champion model.ItemID) {
	o.finished = append(o.finished, champion)
}
