// Package engine implements the elimination tournament engine.
//
// The engine ranks catalog items by preference through a single-elimination
// bracket. It is driven by one synchronous control loop:
//
//	Resume -> Scheduler.Next -> Presenter -> Resolver -> ... -> Ranker
//
// ARCHITECTURE:
//
// Ledger as the only checkpoint:
// Every resolved pairing is one append to the match ledger, committed in the
// same transaction as its rating point and eliminations. The current round,
// the live set and the pending set are recomputed from the ledger and the
// catalog on every call. There is no save operation and no in-memory state
// that has to survive a restart.
//
// Rounds:
// A round pairs every item live at its start. Pending items are shuffled and
// consumed two at a time; an odd item out gets a bye. When nothing is pending
// the scheduler appends the round-boundary row and moves to the next round.
// The tournament finishes when at most one live item remains.
//
// Determinism:
// Pairing order comes from the injected Shuffler. With a seeded shuffler the
// same seed and the same ledger state reproduce the same plan, which is what
// the tests and the golden traces rely on.
//
// Failure model:
// Render failures are ordinary decisions and never stop the loop. Storage
// errors, ledger corruption, unknown ids and stale pairings are fatal and are
// returned unchanged to the caller.
package engine
