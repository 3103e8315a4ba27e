package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Audit walks the whole ledger against the catalog and returns every
// inconsistency found, each as a LEDGER_CORRUPT error. An empty result means
// the persisted state is one the engine could have produced.
//
// The returned error is reserved for failures reading the store.
func Audit(ctx context.Context, s Store) ([]*model.Error, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	matches, err := s.ReadAllMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	return auditLedger(items, matches), nil
}

// auditRound accumulates what the ledger says about one round.
type auditRound struct {
	number int
	seen   map[model.ItemID]bool
	closed bool
}

func auditLedger(items []model.Item, matches []model.Match) []*model.Error {
	findings := []*model.Error{}
	report := func(round int, format string, args ...any) {
		findings = append(findings, model.LedgerCorrupt(round, format, args...))
	}

	catalog := make(map[model.ItemID]model.Item, len(items))
	for _, it := range items {
		catalog[it.ID] = it
	}

	lostIn := make(map[model.ItemID]int) // item -> round it left the bracket
	wins := make(map[model.ItemID]int64) // item -> decided pairings won
	var cur *auditRound

	// closeCheck verifies that every item live at the start of a closed
	// round has a record in it.
	closeCheck := func(r *auditRound) {
		if !r.closed {
			return
		}
		for _, it := range items {
			if round, lost := lostIn[it.ID]; lost && round < r.number {
				continue
			}
			if !r.seen[it.ID] {
				report(r.number, "item %d live at round start has no record before the boundary", it.ID)
			}
		}
	}

	for _, m := range matches {
		if cur == nil || m.RoundNumber != cur.number {
			switch {
			case cur == nil && m.RoundNumber != 1:
				report(m.RoundNumber, "ledger starts at round %d", m.RoundNumber)
			case cur != nil && m.RoundNumber < cur.number:
				report(m.RoundNumber, "round number decreases after round %d (seq %d)", cur.number, m.Seq)
			case cur != nil && m.RoundNumber > cur.number+1:
				report(m.RoundNumber, "rounds %d to %d are missing", cur.number+1, m.RoundNumber-1)
			case cur != nil && !cur.closed:
				report(m.RoundNumber, "round %d has no boundary before round %d starts", cur.number, m.RoundNumber)
			}
			if cur != nil {
				closeCheck(cur)
			}
			cur = &auditRound{number: m.RoundNumber, seen: make(map[model.ItemID]bool)}
		}

		kind := m.Kind()
		if kind == model.KindInvalid {
			report(m.RoundNumber, "malformed record %q (seq %d)", m, m.Seq)
			continue
		}
		if cur.closed {
			report(m.RoundNumber, "record %q after round boundary (seq %d)", m, m.Seq)
		}
		if kind == model.KindRoundBoundary {
			cur.closed = true
			continue
		}

		for _, id := range m.Participants() {
			if _, ok := catalog[id]; !ok {
				report(m.RoundNumber, "unknown item %d (seq %d)", id, m.Seq)
				continue
			}
			if cur.seen[id] {
				report(m.RoundNumber, "item %d appears twice", id)
			}
			cur.seen[id] = true
			if round, lost := lostIn[id]; lost && round < m.RoundNumber {
				report(m.RoundNumber, "item %d plays after leaving in round %d", id, round)
			}
		}

		if kind == model.KindNormal {
			wins[m.Winner]++
		}
		for _, id := range m.Losers() {
			if _, lost := lostIn[id]; !lost {
				lostIn[id] = m.RoundNumber
			}
		}
	}
	if cur != nil {
		closeCheck(cur)
	}

	ids := make([]model.ItemID, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		it := catalog[id]
		_, lost := lostIn[id]
		switch {
		case lost && !it.Eliminated:
			report(lostIn[id], "item %d lost but is not eliminated", id)
		case !lost && it.Eliminated:
			report(0, "item %d is eliminated but never lost", id)
		}
		if it.Rating > wins[id] {
			report(0, "item %d has rating %d but only %d recorded wins", id, it.Rating, wins[id])
		}
	}

	return findings
}
