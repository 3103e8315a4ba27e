package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

func TestPercentile_Boundary(t *testing.T) {
	tests := []struct {
		index  int
		want   float64
		export bool
	}{
		{0, 100.0, true},
		{2, 90.0, true},
		{3, 85.0, true},
		{4, 80.0, false},
		{19, 5.0, false},
	}

	for _, tt := range tests {
		pct := Percentile(tt.index, 20)
		assert.Equal(t, tt.want, pct, "index %d", tt.index)
		assert.Equal(t, tt.export, pct >= DefaultExportThreshold, "index %d", tt.index)
	}
}

func TestRanker_TwentyItems(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 20)

	// Give item k a rating of 20-k so rank order equals id order.
	for id := 1; id <= 20; id++ {
		for i := 0; i < 20-id; i++ {
			require.NoError(t, s.RecordWin(ctx, model.ItemID(id)))
		}
	}

	ranking, err := NewRanker(s, DefaultExportThreshold).Rank(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 20)

	for i, rk := range ranking {
		assert.Equal(t, model.ItemID(i+1), rk.Item.ID)
		assert.Equal(t, i+1, rk.Rank)
	}
	assert.True(t, ranking[3].Export)
	assert.False(t, ranking[4].Export)

	sel := Selections(ranking)
	assert.Len(t, sel, 4)
	assert.Equal(t, Selection{Reference: "item-04.jpg", Percentile: 85}, sel[3])
}

func TestRanker_TiesBreakOnInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, 4)

	require.NoError(t, s.RecordWin(ctx, 3))
	require.NoError(t, s.RecordWin(ctx, 2))

	ranking, err := NewRanker(s, DefaultExportThreshold).Rank(ctx)
	require.NoError(t, err)

	ids := make([]model.ItemID, len(ranking))
	for i, rk := range ranking {
		ids[i] = rk.Item.ID
	}
	assert.Equal(t, []model.ItemID{2, 3, 1, 4}, ids)

	best, err := s.ItemWithHighestRating(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ItemID(2), best.ID)
}

func TestRanker_EmptyCatalog(t *testing.T) {
	s := setupTestStore(t, 0)

	_, err := NewRanker(s, DefaultExportThreshold).Rank(context.Background())
	assert.True(t, model.IsEmptyCatalog(err))

	_, err = NewRanker(s, DefaultExportThreshold).Select(context.Background())
	assert.True(t, model.IsEmptyCatalog(err))
}

func TestSelections_EmptyNotNil(t *testing.T) {
	sel := Selections([]Ranked{{Percentile: 10}})
	assert.NotNil(t, sel)
	assert.Empty(t, sel)
}
