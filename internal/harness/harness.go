package harness

import (
	"context"
	"fmt"

	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/model"
	"github.com/isaaclb98/find-my-fav/internal/store"
	"github.com/isaaclb98/find-my-fav/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs one scenario against a private store with a scripted presenter.
type Harness struct {
	store     *store.Store
	engine    *engine.Engine
	presenter *testutil.ScriptedPresenter
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Assertion failures are reported in the result; an error means the
// scenario could not be executed at all.
//
// Execution flow:
// 1. Create fresh in-memory database and insert the catalog
// 2. Run each session until it stops or the tournament finishes
// 3. Read the ledger as the trace and compute the ranking
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if refs := scenario.References(); len(refs) > 0 {
		if _, err := st.InsertItems(ctx, refs); err != nil {
			return nil, fmt.Errorf("failed to insert items: %w", err)
		}
	}

	h := &Harness{
		store:     st,
		engine:    engine.New(st, engineOptions(scenario)...),
		presenter: newPresenter(scenario),
	}

	result := NewResult()
	if err := h.executeSessions(ctx, scenario.Sessions, result); err != nil {
		return nil, fmt.Errorf("failed to execute sessions: %w", err)
	}
	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func engineOptions(s *Scenario) []engine.Option {
	var opts []engine.Option
	switch s.Shuffle {
	case ShuffleSeeded:
		opts = append(opts, engine.WithShuffler(engine.NewSeededShuffler(s.Seed)))
	default:
		opts = append(opts, engine.WithShuffler(engine.SortedShuffler{}))
	}
	if s.Threshold != nil {
		opts = append(opts, engine.WithExportThreshold(*s.Threshold))
	}
	return opts
}

func newPresenter(s *Scenario) *testutil.ScriptedPresenter {
	p := &testutil.ScriptedPresenter{
		Failing: make(map[model.ItemID]bool, len(s.Failing)),
		StopErr: engine.ErrStopped,
	}
	for _, id := range s.Failing {
		p.Failing[id] = true
	}

	switch s.Policy {
	case PolicyHigherID:
		p.Policy = testutil.HigherIDWins
	case PolicyRanked:
		p.Policy = testutil.Ranked(s.Order...)
	default:
		p.Policy = testutil.LowerIDWins
	}
	return p
}

// executeSessions runs the engine once per session. A session that ends
// with an engine error aborts the scenario.
func (h *Harness) executeSessions(ctx context.Context, sessions []Session, result *Result) error {
	for i, sess := range sessions {
		h.presenter.Reset()
		h.presenter.StopAfter = sess.StopAfter

		res, err := h.engine.Run(ctx, h.presenter)
		if err != nil {
			return fmt.Errorf("session %d: %w", i+1, err)
		}
		result.Sessions = append(result.Sessions, SessionResult{
			Finished: res.Finished,
			Stopped:  res.Stopped,
			Round:    res.Round,
			Resolved: res.Resolved,
			Champion: res.Champion,
		})
	}
	return nil
}

// collect reads the ledger into the trace and the final ranking.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	matches, err := h.store.ReadAllMatches(ctx)
	if err != nil {
		return fmt.Errorf("failed to read ledger: %w", err)
	}
	for _, m := range matches {
		result.AddMatch(m)
	}

	ranking, err := h.engine.Rank(ctx)
	switch {
	case model.IsEmptyCatalog(err):
	case err != nil:
		return fmt.Errorf("failed to rank: %w", err)
	default:
		result.Ranking = ranking
	}
	return nil
}
