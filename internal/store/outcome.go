package store

import (
	"context"
	"fmt"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// CommitOutcome applies one resolved pairing in a single transaction:
// the winner's rating point, the losers' eliminations and the ledger row.
// Either all of it is durable or none of it is.
//
// The pairing is rechecked inside the transaction. A participant that is
// unknown yields NOT_FOUND. A participant that is already eliminated, or
// already has a record in the round, or a round already closed by its
// boundary yields STALE_PAIRING. Nothing is written in either case.
//
// Returns the seq of the appended ledger row.
func (s *Store) CommitOutcome(ctx context.Context, out model.Outcome) (int64, error) {
	m := out.Match
	switch m.Kind() {
	case model.KindNormal, model.KindBye, model.KindNoContest:
	default:
		return 0, fmt.Errorf("commit outcome: %s record is not a pairing outcome", m.Kind())
	}
	if err := checkOutcomeShape(out); err != nil {
		return 0, fmt.Errorf("commit outcome: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("commit outcome: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Step 1: the round must still be open.
	var closed int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM matches
		WHERE round_number = ? AND participant_a = 0 AND participant_b = 0 AND winner = 0
	`, m.RoundNumber).Scan(&closed)
	if err != nil {
		return 0, fmt.Errorf("commit outcome: check round: %w", err)
	}
	if closed > 0 {
		return 0, model.StalePairing(m.RoundNumber, m.ParticipantA, "round already closed")
	}

	// Step 2: every participant must exist, be live and be unrecorded in the round.
	for _, id := range m.Participants() {
		item, err := readItem(ctx, tx, id)
		if err != nil {
			return 0, err
		}
		if item.Eliminated {
			return 0, model.StalePairing(m.RoundNumber, id, "participant already eliminated")
		}

		var seen int
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM matches
			WHERE round_number = ? AND (participant_a = ? OR participant_b = ?)
		`, m.RoundNumber, int64(id), int64(id)).Scan(&seen)
		if err != nil {
			return 0, fmt.Errorf("commit outcome: check participant %d: %w", id, err)
		}
		if seen > 0 {
			return 0, model.StalePairing(m.RoundNumber, id, "participant already recorded in round")
		}
	}

	// Step 3: rating point and eliminations.
	if !out.Winner.IsNone() {
		if err := recordWin(ctx, tx, out.Winner); err != nil {
			return 0, fmt.Errorf("commit outcome: %w", err)
		}
	}
	for _, id := range out.Losers {
		if err := recordLoss(ctx, tx, id); err != nil {
			return 0, fmt.Errorf("commit outcome: %w", err)
		}
	}

	// Step 4: the ledger row.
	seq, err := appendMatch(ctx, tx, m)
	if err != nil {
		return 0, fmt.Errorf("commit outcome: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outcome: commit: %w", err)
	}
	return seq, nil
}

// checkOutcomeShape rejects outcomes whose point and eliminations do not
// belong to the ledger row they travel with.
func checkOutcomeShape(out model.Outcome) error {
	m := out.Match
	if !out.Winner.IsNone() && out.Winner != m.Winner {
		return fmt.Errorf("rating point for %d but row winner is %d", out.Winner, m.Winner)
	}
	for _, id := range out.Losers {
		if id != m.ParticipantA && id != m.ParticipantB {
			return fmt.Errorf("loser %d is not a participant", id)
		}
		if id == m.Winner {
			return fmt.Errorf("winner %d cannot also lose", id)
		}
	}
	return nil
}
