package model

import "fmt"

// ItemID identifies a catalog item. Assigned at insertion, never reused.
type ItemID int64

// NoItem is the "none" value used in ledger rows for missing participants
// and for pairings that produced no winner.
const NoItem ItemID = 0

// IsNone reports whether the id is the NoItem sentinel.
func (id ItemID) IsNone() bool {
	return id == NoItem
}

// Item is one candidate competing in the tournament.
type Item struct {
	ID         ItemID `json:"id"`
	Reference  string `json:"reference"` // Opaque locator, passed through to the presenter
	Rating     int64  `json:"rating"`
	Eliminated bool   `json:"eliminated"`
}

// Live reports whether the item is still in play.
func (it Item) Live() bool {
	return !it.Eliminated
}

// Match is one ledger row.
//
// Seq is assigned by the store on append and orders the ledger; it is zero
// for records that have not been written yet.
type Match struct {
	Seq          int64  `json:"seq,omitempty"`
	RoundNumber  int    `json:"round_number"`
	ParticipantA ItemID `json:"participant_a"`
	ParticipantB ItemID `json:"participant_b"`
	Winner       ItemID `json:"winner"`
}

// MatchKind classifies a ledger row by the shape of its fields.
type MatchKind int

const (
	// KindInvalid is a row that satisfies none of the ledger shapes.
	KindInvalid MatchKind = iota
	// KindNormal is a decided pairing; the winner is one of the participants.
	KindNormal
	// KindBye is a sole unpaired item advanced without an opponent.
	KindBye
	// KindNoContest is a pairing where both items failed to render.
	KindNoContest
	// KindRoundBoundary closes a round.
	KindRoundBoundary
)

// String returns the kind as a string.
func (k MatchKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindBye:
		return "bye"
	case KindNoContest:
		return "no_contest"
	case KindRoundBoundary:
		return "round_boundary"
	default:
		return "invalid"
	}
}

// Kind derives the row kind from its fields.
func (m Match) Kind() MatchKind {
	a, b, w := m.ParticipantA, m.ParticipantB, m.Winner
	switch {
	case a.IsNone() && b.IsNone() && w.IsNone():
		return KindRoundBoundary
	case a.IsNone():
		return KindInvalid
	case b.IsNone():
		if w == a {
			return KindBye
		}
		return KindInvalid
	case a == b:
		return KindInvalid
	case w.IsNone():
		return KindNoContest
	case w == a || w == b:
		return KindNormal
	default:
		return KindInvalid
	}
}

// Participants returns the non-sentinel participant ids of the row.
func (m Match) Participants() []ItemID {
	ids := make([]ItemID, 0, 2)
	if !m.ParticipantA.IsNone() {
		ids = append(ids, m.ParticipantA)
	}
	if !m.ParticipantB.IsNone() {
		ids = append(ids, m.ParticipantB)
	}
	return ids
}

// Losers returns the participants that left the bracket because of this row.
func (m Match) Losers() []ItemID {
	switch m.Kind() {
	case KindNormal:
		if m.Winner == m.ParticipantA {
			return []ItemID{m.ParticipantB}
		}
		return []ItemID{m.ParticipantA}
	case KindNoContest:
		return []ItemID{m.ParticipantA, m.ParticipantB}
	default:
		return nil
	}
}

// String renders the row for logs and traces.
func (m Match) String() string {
	switch m.Kind() {
	case KindRoundBoundary:
		return fmt.Sprintf("round %d: end", m.RoundNumber)
	case KindBye:
		return fmt.Sprintf("round %d: bye %d", m.RoundNumber, m.ParticipantA)
	case KindNoContest:
		return fmt.Sprintf("round %d: %d vs %d -> none", m.RoundNumber, m.ParticipantA, m.ParticipantB)
	default:
		return fmt.Sprintf("round %d: %d vs %d -> %d", m.RoundNumber, m.ParticipantA, m.ParticipantB, m.Winner)
	}
}

// NewRoundBoundary returns the sentinel row that closes a round.
func NewRoundBoundary(round int) Match {
	return Match{RoundNumber: round}
}

// NewBye returns the row advancing a sole unpaired item.
func NewBye(round int, id ItemID) Match {
	return Match{RoundNumber: round, ParticipantA: id, Winner: id}
}

// Pairing is two live items scheduled against each other in a round.
type Pairing struct {
	Round int    `json:"round"`
	A     ItemID `json:"a"`
	B     ItemID `json:"b"`
}

// Tournament is the single tournament row of a store.
type Tournament struct {
	ID            string `json:"id"`     // UUIDv7
	Source        string `json:"source"` // Folder the catalog was populated from
	Finished      bool   `json:"finished"`
	FinishedRound int    `json:"finished_round,omitempty"`
}

// Outcome is everything one resolved pairing changes, applied as a unit:
// the rating point (if any), the eliminations and the ledger row.
type Outcome struct {
	Match  Match    `json:"match"`
	Winner ItemID   `json:"winner"` // Item awarded a rating point, NoItem for none
	Losers []ItemID `json:"losers"` // Items eliminated by this pairing
}
