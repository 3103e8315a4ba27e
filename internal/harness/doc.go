// Package harness runs tournament scenarios end to end.
//
// A scenario describes a catalog, a decision policy standing in for the
// user, items that fail to render, how sessions are interrupted and what
// must hold afterwards. The harness drives the real engine against a fresh
// in-memory store, so every scenario exercises the scheduler, the resolver
// and the resume path exactly as the CLI does.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: five_items
//	description: "Odd catalog with byes in two rounds"
//	items: 5               # or refs: [a.jpg, b.jpg, ...]
//	shuffle: sorted        # sorted (default) or seeded
//	seed: 42               # seeded only
//	policy: lower_id       # lower_id (default), higher_id or ranked
//	order: [3, 1, 2]       # ranked only: preferred ids first
//	failing: [4]           # items that fail to render
//	threshold: 85          # export threshold (default 85)
//	sessions:              # default: one session to completion
//	  - stop_after: 2      # stop after two decisions
//	  - {}                 # resume and finish
//	assertions:
//	  - type: champion
//	    item: 1
//	  - type: trace_contains
//	    record: "round 1: 1 vs 2 -> 1"
//
// # Assertion Types
//
//   - trace_contains: a ledger record appears
//   - trace_order: ledger records appear in the given order
//   - trace_count: number of ledger records of a kind
//   - champion: the final champion (item 0 for none)
//   - exported: ids selected for export, best first
//   - ledger_consistent: the ledger audit reports nothing
//   - final_state: a row of a store table has the expected values
//
// # Deterministic Testing
//
// With the sorted shuffle and a fixed policy a scenario produces the same
// ledger on every run; RunWithGolden compares a rendering of the ledger,
// the sessions and the ranking against testdata/golden/<name>.golden.
package harness
