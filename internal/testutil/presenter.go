package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// ErrScriptStopped is returned by a ScriptedPresenter once StopAfter
// decisions have been made and no StopErr is configured.
var ErrScriptStopped = errors.New("script stopped")

// Policy picks the winner of a pairing between two renderable items.
type Policy func(a, b model.Item) model.Decision

// LowerIDWins prefers the item inserted first.
func LowerIDWins(a, b model.Item) model.Decision {
	if a.ID < b.ID {
		return model.WinnerIsA
	}
	return model.WinnerIsB
}

// HigherIDWins prefers the item inserted last.
func HigherIDWins(a, b model.Item) model.Decision {
	if a.ID > b.ID {
		return model.WinnerIsA
	}
	return model.WinnerIsB
}

// Ranked prefers whichever item appears earlier in order. Items missing from
// order lose to those present; two missing items fall back to LowerIDWins.
func Ranked(order ...model.ItemID) Policy {
	pos := make(map[model.ItemID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return func(a, b model.Item) model.Decision {
		pa, okA := pos[a.ID]
		pb, okB := pos[b.ID]
		switch {
		case okA && okB:
			if pa < pb {
				return model.WinnerIsA
			}
			return model.WinnerIsB
		case okA:
			return model.WinnerIsA
		case okB:
			return model.WinnerIsB
		default:
			return LowerIDWins(a, b)
		}
	}
}

// ScriptedPresenter answers pairings without a user.
//
// Items listed in Failing are reported as render failures. After StopAfter
// decisions (when positive) every call returns StopErr, or ErrScriptStopped
// if StopErr is nil. Seen records every pairing that produced a decision.
type ScriptedPresenter struct {
	Policy    Policy
	Failing   map[model.ItemID]bool
	StopAfter int
	StopErr   error

	mu    sync.Mutex
	calls int
	seen  []model.Pairing
}

// PresentPairing implements engine.Presenter.
func (p *ScriptedPresenter) PresentPairing(ctx context.Context, a, b model.Item) (model.Decision, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.StopAfter > 0 && p.calls >= p.StopAfter {
		if p.StopErr != nil {
			return 0, p.StopErr
		}
		return 0, ErrScriptStopped
	}
	p.calls++
	p.seen = append(p.seen, model.Pairing{A: a.ID, B: b.ID})

	switch {
	case p.Failing[a.ID] && p.Failing[b.ID]:
		return model.BothFailedToRender, nil
	case p.Failing[a.ID]:
		return model.AFailedToRender, nil
	case p.Failing[b.ID]:
		return model.BFailedToRender, nil
	}

	policy := p.Policy
	if policy == nil {
		policy = LowerIDWins
	}
	return policy(a, b), nil
}

// Calls returns the number of decisions made so far.
func (p *ScriptedPresenter) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Seen returns a copy of the pairings presented so far.
func (p *ScriptedPresenter) Seen() []model.Pairing {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Pairing, len(p.seen))
	copy(out, p.seen)
	return out
}

// Reset clears the call count so the presenter can drive another session.
func (p *ScriptedPresenter) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = 0
	p.seen = nil
}
