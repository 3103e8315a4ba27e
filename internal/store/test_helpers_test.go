package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedItems inserts n items named img-1..img-n and returns their ids in
// insertion order.
func seedItems(t *testing.T, s *Store, n int) []model.ItemID {
	t.Helper()
	ctx := context.Background()
	refs := make([]string, n)
	for i := range refs {
		refs[i] = "img-" + string(rune('a'+i)) + ".jpg"
	}
	if _, err := s.InsertItems(ctx, refs); err != nil {
		t.Fatalf("InsertItems() failed: %v", err)
	}
	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems() failed: %v", err)
	}
	ids := make([]model.ItemID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// normalOutcome builds the outcome of a decided pairing.
func normalOutcome(round int, a, b, winner model.ItemID) model.Outcome {
	loser := a
	if winner == a {
		loser = b
	}
	return model.Outcome{
		Match:  model.Match{RoundNumber: round, ParticipantA: a, ParticipantB: b, Winner: winner},
		Winner: winner,
		Losers: []model.ItemID{loser},
	}
}
