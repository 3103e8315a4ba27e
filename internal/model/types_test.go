package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchKind(t *testing.T) {
	tests := []struct {
		name  string
		match Match
		want  MatchKind
	}{
		{"normal winner a", Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2, Winner: 1}, KindNormal},
		{"normal winner b", Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2, Winner: 2}, KindNormal},
		{"bye", NewBye(3, 7), KindBye},
		{"no contest", Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2}, KindNoContest},
		{"round boundary", NewRoundBoundary(2), KindRoundBoundary},
		{"winner outside pairing", Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2, Winner: 3}, KindInvalid},
		{"missing a", Match{RoundNumber: 1, ParticipantB: 2, Winner: 2}, KindInvalid},
		{"bye without winner", Match{RoundNumber: 1, ParticipantA: 4}, KindInvalid},
		{"self pairing", Match{RoundNumber: 1, ParticipantA: 4, ParticipantB: 4, Winner: 4}, KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.match.Kind())
		})
	}
}

func TestMatchLosers(t *testing.T) {
	assert.Equal(t, []ItemID{2}, Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2, Winner: 1}.Losers())
	assert.Equal(t, []ItemID{1}, Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2, Winner: 2}.Losers())
	assert.Equal(t, []ItemID{1, 2}, Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2}.Losers())
	assert.Nil(t, NewBye(1, 5).Losers())
	assert.Nil(t, NewRoundBoundary(1).Losers())
}

func TestMatchParticipants(t *testing.T) {
	assert.Equal(t, []ItemID{1, 2}, Match{ParticipantA: 1, ParticipantB: 2}.Participants())
	assert.Equal(t, []ItemID{5}, NewBye(1, 5).Participants())
	assert.Empty(t, NewRoundBoundary(1).Participants())
}

func TestMatchString(t *testing.T) {
	assert.Equal(t, "round 1: 1 vs 2 -> 2", Match{RoundNumber: 1, ParticipantA: 1, ParticipantB: 2, Winner: 2}.String())
	assert.Equal(t, "round 2: bye 5", NewBye(2, 5).String())
	assert.Equal(t, "round 1: 3 vs 4 -> none", Match{RoundNumber: 1, ParticipantA: 3, ParticipantB: 4}.String())
	assert.Equal(t, "round 3: end", NewRoundBoundary(3).String())
}
