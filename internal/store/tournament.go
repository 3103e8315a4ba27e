package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// ErrNoTournament is returned by Tournament when the row has not been
// created yet.
var ErrNoTournament = errors.New("no tournament")

// NewTournamentID generates a time-sortable UUIDv7 tournament id.
func NewTournamentID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// EnsureTournament creates the tournament row if it does not exist yet and
// returns the stored row. An existing row is left untouched, so the id and
// source of a resumed tournament never change.
func (s *Store) EnsureTournament(ctx context.Context, id, source string) (model.Tournament, error) {
	if id == "" {
		id = NewTournamentID()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournament (id, tournament_id, source)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, source)
	if err != nil {
		return model.Tournament{}, fmt.Errorf("ensure tournament: %w", err)
	}
	return s.Tournament(ctx)
}

// Tournament returns the tournament row.
// Returns ErrNoTournament if the row does not exist.
func (s *Store) Tournament(ctx context.Context) (model.Tournament, error) {
	var (
		t        model.Tournament
		finished int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT tournament_id, source, finished, finished_round
		FROM tournament WHERE id = 1
	`).Scan(&t.ID, &t.Source, &finished, &t.FinishedRound)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tournament{}, ErrNoTournament
	}
	if err != nil {
		return model.Tournament{}, fmt.Errorf("read tournament: %w", err)
	}
	t.Finished = finished != 0
	return t, nil
}

// IsTournamentFinished reports whether the finished marker has been written.
// A store without a tournament row is not finished.
func (s *Store) IsTournamentFinished(ctx context.Context) (bool, error) {
	var finished int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(finished), 0) FROM tournament
	`).Scan(&finished)
	if err != nil {
		return false, fmt.Errorf("is tournament finished: %w", err)
	}
	return finished != 0, nil
}

// MarkFinished writes the finished marker for the given final round.
// Creates the tournament row if needed. Marking an already finished
// tournament keeps the original final round.
func (s *Store) MarkFinished(ctx context.Context, round int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tournament (id, tournament_id, finished, finished_round)
		VALUES (1, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE
		SET finished = 1, finished_round = excluded.finished_round
		WHERE tournament.finished = 0
	`, NewTournamentID(), round)
	if err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}
	return nil
}
