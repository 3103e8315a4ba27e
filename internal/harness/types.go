package harness

import (
	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/model"
)

// TraceEvent is one ledger record in the order it was appended.
type TraceEvent struct {
	Seq    int64  `json:"seq"`
	Round  int    `json:"round"`
	Kind   string `json:"kind"`   // normal, bye, no_contest or round_boundary
	Record string `json:"record"` // Match.String rendering
}

// SessionResult is how one session (one engine Run) ended.
type SessionResult struct {
	Finished bool         `json:"finished"`
	Stopped  bool         `json:"stopped"`
	Round    int          `json:"round"`
	Resolved int          `json:"resolved"`
	Champion model.ItemID `json:"champion"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Trace is the whole ledger after the last session.
	Trace []TraceEvent `json:"trace"`

	// Sessions has one entry per engine Run.
	Sessions []SessionResult `json:"sessions"`

	// Ranking is the final ranking with export marks.
	Ranking []engine.Ranked `json:"ranking"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Sessions: []SessionResult{},
		Ranking:  []engine.Ranked{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddMatch appends a ledger record to the trace.
func (r *Result) AddMatch(m model.Match) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    m.Seq,
		Round:  m.RoundNumber,
		Kind:   m.Kind().String(),
		Record: m.String(),
	})
}

// Champion returns the champion reported by the last session.
func (r *Result) Champion() model.ItemID {
	if len(r.Sessions) == 0 {
		return model.NoItem
	}
	return r.Sessions[len(r.Sessions)-1].Champion
}
