package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Render produces the golden snapshot of a scenario execution: how each
// session ended, the ledger in append order and the final ranking.
//
// The format is plain text so that golden diffs read like the ledger
// itself:
//
//	scenario: five_items
//	sessions:
//	  1: finished in round 3, resolved 4, champion 1
//	ledger:
//	  round 1: bye 5
//	  ...
//	ranking:
//	    1 100.0 3 item-01.jpg export
func Render(name string, result *Result) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "scenario: %s\n", name)

	buf.WriteString("sessions:\n")
	for i, s := range result.Sessions {
		switch {
		case s.Finished:
			champion := "none"
			if !s.Champion.IsNone() {
				champion = fmt.Sprintf("%d", s.Champion)
			}
			fmt.Fprintf(&buf, "  %d: finished in round %d, resolved %d, champion %s\n",
				i+1, s.Round, s.Resolved, champion)
		case s.Stopped:
			fmt.Fprintf(&buf, "  %d: stopped in round %d, resolved %d\n", i+1, s.Round, s.Resolved)
		default:
			fmt.Fprintf(&buf, "  %d: ended in round %d, resolved %d\n", i+1, s.Round, s.Resolved)
		}
	}

	buf.WriteString("ledger:\n")
	for _, event := range result.Trace {
		fmt.Fprintf(&buf, "  %s\n", event.Record)
	}

	buf.WriteString("ranking:\n")
	for _, r := range result.Ranking {
		mark := ""
		if r.Export {
			mark = " export"
		}
		fmt.Fprintf(&buf, "  %d %5.1f %d %s%s\n", r.Rank, r.Percentile, r.Item.Rating, r.Item.Reference, mark)
	}

	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Render(scenarioName, result))
}
