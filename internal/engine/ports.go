package engine

import (
	"context"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Catalog is the read side of the catalog store used by the engine.
// Mutations go through Store.CommitOutcome only.
type Catalog interface {
	Item(ctx context.Context, id model.ItemID) (model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	ListLiveItems(ctx context.Context) ([]model.Item, error)
	ListItemsByRating(ctx context.Context) ([]model.Item, error)
	ItemWithHighestRating(ctx context.Context) (model.Item, error)
	CountItems(ctx context.Context) (total, live int, err error)
}

// Ledger is the match ledger and the finished marker.
type Ledger interface {
	LatestRoundNumber(ctx context.Context) (int, error)
	MatchesInRound(ctx context.Context, round int) ([]model.Match, error)
	ReadAllMatches(ctx context.Context) ([]model.Match, error)
	AppendMatch(ctx context.Context, m model.Match) (int64, error)
	IsTournamentFinished(ctx context.Context) (bool, error)
	MarkFinished(ctx context.Context, round int) error
}

// Store is everything the engine needs from persistence.
// Implemented by *store.Store.
type Store interface {
	Catalog
	Ledger

	// CommitOutcome applies the rating point, eliminations and ledger row of
	// one resolved pairing atomically and returns the row's seq.
	CommitOutcome(ctx context.Context, out model.Outcome) (int64, error)
}
