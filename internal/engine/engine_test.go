package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

func TestRun_FiveItems(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 5)
	obs := &recordingObserver{}
	e := New(s, WithShuffler(SortedShuffler{}), WithObserver(obs))

	res, err := e.Run(ctx, &lowerIDWins{})
	require.NoError(t, err)

	assert.True(t, res.Finished)
	assert.False(t, res.Stopped)
	assert.Equal(t, 3, res.Round)
	assert.Equal(t, model.ItemID(1), res.Champion)
	assert.Equal(t, 4, res.Resolved)

	assert.Equal(t, []string{
		"round 1: bye 5",
		"round 1: 1 vs 2 -> 1",
		"round 1: 3 vs 4 -> 3",
		"round 1: end",
		"round 2: bye 5",
		"round 2: 1 vs 3 -> 1",
		"round 2: end",
		"round 3: 1 vs 5 -> 1",
	}, ledgerStrings(t, s))

	ranking, err := e.Rank(ctx)
	require.NoError(t, err)
	ratings := map[model.ItemID]int64{}
	for _, rk := range ranking {
		ratings[rk.Item.ID] = rk.Item.Rating
	}
	assert.Equal(t, map[model.ItemID]int64{1: 3, 2: 0, 3: 1, 4: 0, 5: 0}, ratings)

	assert.Equal(t, []model.ItemID{5, 5}, obs.byes)
	assert.Equal(t, []int{1, 2}, obs.rounds)
	assert.Equal(t, []model.ItemID{1}, obs.finished)
	assert.Len(t, obs.resolved, 4)

	finished, err := s.IsTournamentFinished(ctx)
	require.NoError(t, err)
	assert.True(t, finished)
}

func TestRun_Convergence(t *testing.T) {
	for n := 1; n <= 17; n++ {
		ctx := context.Background()
		s := setupTestStore(t, n)
		e := New(s, WithShuffler(NewSeededShuffler(uint64(n)*7919)))

		res, err := e.Run(ctx, &lowerIDWins{})
		require.NoError(t, err, "n=%d", n)
		require.True(t, res.Finished, "n=%d", n)
		assert.Equal(t, n-1, res.Resolved, "n=%d", n)

		_, live, err := s.CountItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, live, "n=%d", n)

		played := map[int]bool{}
		matches, err := s.ReadAllMatches(ctx)
		require.NoError(t, err)
		for _, m := range matches {
			played[m.RoundNumber] = true
		}
		assert.LessOrEqual(t, len(played), TotalRounds(n), "n=%d", n)

		findings, err := Audit(ctx, s)
		require.NoError(t, err)
		assert.Empty(t, findings, "n=%d", n)
	}
}

func TestRun_StopAndResume(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 9)

	first := New(s, WithShuffler(NewSeededShuffler(42)))
	res, err := first.Run(ctx, &lowerIDWins{stopAfter: 3})
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.False(t, res.Finished)
	assert.Equal(t, 3, res.Resolved)

	second := New(s, WithShuffler(NewSeededShuffler(42)))
	res, err = second.Run(ctx, &lowerIDWins{})
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Equal(t, 5, res.Resolved)
	// Lower id always wins, so item 1 survives regardless of pairing order.
	assert.Equal(t, model.ItemID(1), res.Champion)

	findings, err := Audit(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRun_FinishedTournamentIsNotReplayed(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 4)
	e := New(s, WithShuffler(SortedShuffler{}))

	_, err := e.Run(ctx, &lowerIDWins{})
	require.NoError(t, err)
	before := ledgerStrings(t, s)

	p := &lowerIDWins{}
	res, err := New(s).Run(ctx, p)
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Equal(t, model.ItemID(1), res.Champion)
	assert.Zero(t, p.calls)
	assert.Equal(t, before, ledgerStrings(t, s))
}

func TestRun_MutualRenderFailureLeavesNoChampion(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 2)
	e := New(s, WithShuffler(SortedShuffler{}))

	res, err := e.Run(ctx, &lowerIDWins{failing: map[model.ItemID]bool{1: true, 2: true}})
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Equal(t, model.NoItem, res.Champion)

	assert.Equal(t, []string{"round 1: 1 vs 2 -> none"}, ledgerStrings(t, s))

	for _, id := range []model.ItemID{1, 2} {
		it, err := s.Item(ctx, id)
		require.NoError(t, err)
		assert.True(t, it.Eliminated)
		assert.Zero(t, it.Rating)
	}
}

func TestRun_RenderFailureAdvancesWithoutPoint(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 4)
	e := New(s, WithShuffler(SortedShuffler{}))

	// Item 1 never renders: it loses round 1 and 2 advances pointless.
	res, err := e.Run(ctx, &lowerIDWins{failing: map[model.ItemID]bool{1: true}})
	require.NoError(t, err)
	assert.Equal(t, model.ItemID(2), res.Champion)

	two, err := s.Item(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), two.Rating, "point only for the round 2 win over 3")

	assert.Equal(t, []string{
		"round 1: 1 vs 2 -> 2",
		"round 1: 3 vs 4 -> 3",
		"round 1: end",
		"round 2: 2 vs 3 -> 2",
	}, ledgerStrings(t, s))
}

func TestRun_EmptyCatalog(t *testing.T) {
	s := setupTestStore(t, 0)
	_, err := New(s).Run(context.Background(), &lowerIDWins{})
	assert.True(t, model.IsEmptyCatalog(err))
}

func TestRun_ContextCancelled(t *testing.T) {
	s := setupTestStore(t, 4)
	ctx, cancel := context.WithCancel(context.Background())

	p := PresenterFunc(func(_ context.Context, a, _ model.Item) (model.Decision, error) {
		cancel()
		return model.WinnerIsA, nil
	})

	res, err := New(s, WithShuffler(SortedShuffler{})).Run(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Resolved)

	n, err := s.CountMatches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_InvalidDecision(t *testing.T) {
	s := setupTestStore(t, 2)
	p := PresenterFunc(func(context.Context, model.Item, model.Item) (model.Decision, error) {
		return model.Decision(99), nil
	})

	_, err := New(s).Run(context.Background(), p)
	assert.Error(t, err)

	n, err := s.CountMatches(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_CorruptLedgerIsFatal(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 3)

	// Item 2 eliminated without any ledger record.
	require.NoError(t, s.RecordLoss(ctx, 2))

	p := &lowerIDWins{}
	_, err := New(s).Run(ctx, p)
	assert.True(t, model.IsLedgerCorrupt(err))
	assert.Zero(t, p.calls)
}

func TestEngine_SelectUsesThreshold(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 4)
	e := New(s, WithShuffler(SortedShuffler{}), WithExportThreshold(50))

	_, err := e.Run(ctx, &lowerIDWins{})
	require.NoError(t, err)

	sel, err := e.Select(ctx)
	require.NoError(t, err)
	// Ratings: 1 -> 2, 3 -> 1, 2 -> 0, 4 -> 0. Percentiles 100, 75, 50, 25.
	assert.Equal(t, []Selection{
		{Reference: "item-01.jpg", Percentile: 100},
		{Reference: "item-03.jpg", Percentile: 75},
		{Reference: "item-02.jpg", Percentile: 50},
	}, sel)
}
