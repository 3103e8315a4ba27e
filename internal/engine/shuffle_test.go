package engine

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

func ids(n int) []model.ItemID {
	out := make([]model.ItemID, n)
	for i := range out {
		out[i] = model.ItemID(i + 1)
	}
	return out
}

func TestSeededShuffler_Reproducible(t *testing.T) {
	a, b := ids(32), ids(32)
	NewSeededShuffler(7).Shuffle(3, a)
	NewSeededShuffler(7).Shuffle(3, b)
	assert.Equal(t, a, b)

	// Still a permutation.
	sorted := slices.Clone(a)
	slices.Sort(sorted)
	assert.Equal(t, ids(32), sorted)
}

func TestSeededShuffler_StreamDependsOnRound(t *testing.T) {
	a, b := ids(32), ids(32)
	NewSeededShuffler(7).Shuffle(1, a)
	NewSeededShuffler(7).Shuffle(2, b)
	assert.NotEqual(t, a, b)
}

func TestSortedShuffler(t *testing.T) {
	in := []model.ItemID{4, 1, 3, 2}
	SortedShuffler{}.Shuffle(1, in)
	assert.Equal(t, []model.ItemID{1, 2, 3, 4}, in)
}

func TestRandomShuffler_Permutation(t *testing.T) {
	in := ids(10)
	RandomShuffler{}.Shuffle(1, in)
	slices.Sort(in)
	assert.Equal(t, ids(10), in)
}

func TestShufflerFor(t *testing.T) {
	assert.IsType(t, RandomShuffler{}, ShufflerFor(0))
	assert.Equal(t, NewSeededShuffler(5), ShufflerFor(5))
}
