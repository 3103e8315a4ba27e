package engine

import (
	"context"
	"fmt"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// DefaultExportThreshold is the minimum percentile an item needs to be
// exported. The comparison is inclusive.
const DefaultExportThreshold = 85.0

// Ranked is one item's final position.
type Ranked struct {
	Item       model.Item `json:"item"`
	Rank       int        `json:"rank"` // 1-based
	Percentile float64    `json:"percentile"`
	Export     bool       `json:"export"`
}

// Selection is one entry of the export list handed to the copy step.
type Selection struct {
	Reference  string  `json:"reference"`
	Percentile float64 `json:"percentile"`
}

// Percentile returns the percentile of the item at 0-based rank index i out
// of total items: (1 - i/total) * 100.
func Percentile(i, total int) float64 {
	// Multiplying before dividing keeps the values exact at the
	// boundaries (index 3 of 20 is exactly 85).
	return float64(total-i) * 100 / float64(total)
}

// Ranker orders the catalog by final rating.
type Ranker struct {
	catalog   Catalog
	threshold float64
}

// NewRanker creates a ranker exporting items at or above threshold.
func NewRanker(c Catalog, threshold float64) *Ranker {
	return &Ranker{catalog: c, threshold: threshold}
}

// Threshold returns the export threshold.
func (r *Ranker) Threshold() float64 {
	return r.threshold
}

// Rank returns every item, live or not, by rating descending with ties in
// insertion order. Returns EMPTY_CATALOG if there are no items.
func (r *Ranker) Rank(ctx context.Context) ([]Ranked, error) {
	items, err := r.catalog.ListItemsByRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	if len(items) == 0 {
		return nil, model.EmptyCatalog()
	}

	ranking := make([]Ranked, len(items))
	for i, it := range items {
		pct := Percentile(i, len(items))
		ranking[i] = Ranked{
			Item:       it,
			Rank:       i + 1,
			Percentile: pct,
			Export:     pct >= r.threshold,
		}
	}
	return ranking, nil
}

// Select returns the export list: reference and percentile of every item
// at or above the threshold, best first.
func (r *Ranker) Select(ctx context.Context) ([]Selection, error) {
	ranking, err := r.Rank(ctx)
	if err != nil {
		return nil, err
	}
	return Selections(ranking), nil
}

// Selections extracts the exported entries of a ranking.
func Selections(ranking []Ranked) []Selection {
	out := []Selection{}
	for _, rk := range ranking {
		if rk.Export {
			out = append(out, Selection{Reference: rk.Item.Reference, Percentile: rk.Percentile})
		}
	}
	return out
}
