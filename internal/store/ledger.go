package store

import (
	"context"
	"fmt"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

const matchColumns = `seq, round_number, participant_a, participant_b, winner`

// AppendMatch writes one ledger row and returns its seq.
// The row is durable once AppendMatch returns.
//
// Rows whose shape is not a normal match, bye, no-contest or round boundary
// are rejected before reaching the database.
func (s *Store) AppendMatch(ctx context.Context, m model.Match) (int64, error) {
	return appendMatch(ctx, s.db, m)
}

// LatestRoundNumber returns the highest round number in the ledger, or 1
// if the ledger is empty.
func (s *Store) LatestRoundNumber(ctx context.Context) (int, error) {
	var round int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(round_number), 1) FROM matches
	`).Scan(&round)
	if err != nil {
		return 0, fmt.Errorf("latest round number: %w", err)
	}
	return round, nil
}

// MatchesInRound returns all ledger rows for a round, ordered by seq.
// Returns an empty slice (not nil) if the round has no rows.
func (s *Store) MatchesInRound(ctx context.Context, round int) ([]model.Match, error) {
	return s.queryMatches(ctx, "matches in round", `
		SELECT `+matchColumns+` FROM matches
		WHERE round_number = ?
		ORDER BY seq ASC
	`, round)
}

// ReadAllMatches returns the whole ledger ordered by seq.
// Used by the audit and by replay tooling.
func (s *Store) ReadAllMatches(ctx context.Context) ([]model.Match, error) {
	return s.queryMatches(ctx, "read all matches", `
		SELECT `+matchColumns+` FROM matches
		ORDER BY seq ASC
	`)
}

// CountMatches returns the number of ledger rows, sentinels included.
func (s *Store) CountMatches(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

func appendMatch(ctx context.Context, q queryer, m model.Match) (int64, error) {
	if m.RoundNumber < 1 {
		return 0, fmt.Errorf("append match: round number %d must be >= 1", m.RoundNumber)
	}
	if m.Kind() == model.KindInvalid {
		return 0, fmt.Errorf("append match: malformed record %d/%d/%d",
			m.ParticipantA, m.ParticipantB, m.Winner)
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO matches (round_number, participant_a, participant_b, winner)
		VALUES (?, ?, ?, ?)
	`,
		m.RoundNumber,
		int64(m.ParticipantA),
		int64(m.ParticipantB),
		int64(m.Winner),
	)
	if err != nil {
		return 0, fmt.Errorf("append match: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append match: last insert id: %w", err)
	}
	return seq, nil
}

func (s *Store) queryMatches(ctx context.Context, op, query string, args ...any) ([]model.Match, error) {
	return queryMatches(ctx, s.db, op, query, args...)
}

func queryMatches(ctx context.Context, q queryer, op, query string, args ...any) ([]model.Match, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	matches := []model.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			// An unreadable ledger row is corruption, not an I/O hiccup.
			return nil, &model.Error{
				Code:    model.CodeLedgerCorrupt,
				Message: fmt.Sprintf("%s: unreadable match row", op),
				Err:     err,
			}
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}

	return matches, nil
}

func scanMatch(row rowScanner) (model.Match, error) {
	var (
		m       model.Match
		a, b, w int64
	)
	if err := row.Scan(&m.Seq, &m.RoundNumber, &a, &b, &w); err != nil {
		return model.Match{}, err
	}
	m.ParticipantA = model.ItemID(a)
	m.ParticipantB = model.ItemID(b)
	m.Winner = model.ItemID(w)
	return m, nil
}
