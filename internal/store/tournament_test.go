package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestTournament_Missing(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Tournament(context.Background())
	if !errors.Is(err, ErrNoTournament) {
		t.Errorf("err = %v, want ErrNoTournament", err)
	}

	finished, err := s.IsTournamentFinished(context.Background())
	if err != nil {
		t.Fatalf("IsTournamentFinished() failed: %v", err)
	}
	if finished {
		t.Error("store without a tournament row should not be finished")
	}
}

func TestEnsureTournament_KeepsFirstIdentity(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	first, err := s.EnsureTournament(ctx, "", "/photos/trip")
	if err != nil {
		t.Fatalf("EnsureTournament() failed: %v", err)
	}
	id, err := uuid.Parse(first.ID)
	if err != nil {
		t.Fatalf("tournament id %q is not a uuid: %v", first.ID, err)
	}
	if id.Version() != 7 {
		t.Errorf("uuid version = %d, want 7", id.Version())
	}

	second, err := s.EnsureTournament(ctx, "other", "/elsewhere")
	if err != nil {
		t.Fatalf("second EnsureTournament() failed: %v", err)
	}
	if second != first {
		t.Errorf("second = %+v, want %+v", second, first)
	}
}

func TestMarkFinished(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if _, err := s.EnsureTournament(ctx, "t-1", "/src"); err != nil {
		t.Fatalf("EnsureTournament() failed: %v", err)
	}
	if err := s.MarkFinished(ctx, 3); err != nil {
		t.Fatalf("MarkFinished() failed: %v", err)
	}
	// A second mark keeps the first final round.
	if err := s.MarkFinished(ctx, 9); err != nil {
		t.Fatalf("second MarkFinished() failed: %v", err)
	}

	tour, err := s.Tournament(ctx)
	if err != nil {
		t.Fatalf("Tournament() failed: %v", err)
	}
	if !tour.Finished || tour.FinishedRound != 3 {
		t.Errorf("tournament = %+v, want finished in round 3", tour)
	}
	if tour.ID != "t-1" || tour.Source != "/src" {
		t.Errorf("identity changed: %+v", tour)
	}

	finished, err := s.IsTournamentFinished(ctx)
	if err != nil {
		t.Fatalf("IsTournamentFinished() failed: %v", err)
	}
	if !finished {
		t.Error("IsTournamentFinished() = false, want true")
	}
}

func TestMarkFinished_CreatesRow(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if err := s.MarkFinished(ctx, 1); err != nil {
		t.Fatalf("MarkFinished() failed: %v", err)
	}
	tour, err := s.Tournament(ctx)
	if err != nil {
		t.Fatalf("Tournament() failed: %v", err)
	}
	if !tour.Finished || tour.ID == "" {
		t.Errorf("tournament = %+v, want finished row with an id", tour)
	}
}
