package engine

import "github.com/isaaclb98/find-my-fav/internal/model"

// Observer receives engine events after they are durable.
// Implementations must not block; they run inside the control loop.
type Observer interface {
	PairingResolved(d model.Decision, out model.Outcome)
	ByeRecorded(round int, id model.ItemID)
	RoundCompleted(round, live int)
	TournamentFinished(round int, champion model.ItemID)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PairingResolved(model.Decision, model.Outcome) {}
func (NopObserver) ByeRecorded(int, model.ItemID)                 {}
func (NopObserver) RoundCompleted(int, int)                       {}
func (NopObserver) TournamentFinished(int, model.ItemID)          {}
