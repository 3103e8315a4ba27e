package engine

import (
	"math/rand/v2"
	"slices"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Shuffler permutes the pending items of a round in place before they are
// paired. Implemented by RandomShuffler (production), SeededShuffler
// (reproducible runs) and SortedShuffler (golden tests).
type Shuffler interface {
	Shuffle(round int, ids []model.ItemID)
}

// RandomShuffler draws a uniform permutation from the global generator.
// Pairings differ from run to run.
type RandomShuffler struct{}

// Shuffle implements Shuffler.
func (RandomShuffler) Shuffle(_ int, ids []model.ItemID) {
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// SeededShuffler draws a uniform permutation from a PCG stream keyed by
// (seed, round).
//
// Keying on the round makes a plan depend only on the seed and the ledger
// state: a restarted process recomputes the same pairing for the same
// pending set without replaying earlier draws.
type SeededShuffler struct {
	seed uint64
}

// NewSeededShuffler creates a shuffler for the given seed.
func NewSeededShuffler(seed uint64) SeededShuffler {
	return SeededShuffler{seed: seed}
}

// Shuffle implements Shuffler.
func (s SeededShuffler) Shuffle(round int, ids []model.ItemID) {
	r := rand.New(rand.NewPCG(s.seed, uint64(round)))
	r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// SortedShuffler leaves ids in ascending order, so the lowest two ids meet
// first and the highest odd id gets the bye.
type SortedShuffler struct{}

// Shuffle implements Shuffler.
func (SortedShuffler) Shuffle(_ int, ids []model.ItemID) {
	slices.Sort(ids)
}

// ShufflerFor returns a SeededShuffler for a non-zero seed and a
// RandomShuffler otherwise.
func ShufflerFor(seed uint64) Shuffler {
	if seed == 0 {
		return RandomShuffler{}
	}
	return NewSeededShuffler(seed)
}
