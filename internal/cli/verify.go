package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/model"
)

// Finding is one ledger inconsistency in verify output.
type Finding struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Round   int          `json:"round,omitempty"`
	ItemID  model.ItemID `json:"item_id,omitempty"`
}

// VerifyResult is the output of the verify command.
type VerifyResult struct {
	Consistent bool      `json:"consistent"`
	Records    int       `json:"records"`
	Findings   []Finding `json:"findings"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the ledger for inconsistencies",
		Long: `Audit the whole ledger against the catalog. Nothing is repaired.

Exit codes:
  0 - ledger consistent
  1 - inconsistencies found
  2 - command error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st)

	findings, err := engine.Audit(ctx, st)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to audit ledger", err)
	}
	records, err := st.CountMatches(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to count records", err)
	}

	result := VerifyResult{
		Consistent: len(findings) == 0,
		Records:    records,
		Findings:   make([]Finding, len(findings)),
	}
	for i, f := range findings {
		result.Findings[i] = Finding{
			Code:    string(f.Code),
			Message: f.Message,
			Round:   f.Round,
			ItemID:  f.ItemID,
		}
	}

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Consistent {
		fmt.Fprintf(formatter.Writer, "✓ Ledger consistent (%d records)\n", records)
	} else {
		fmt.Fprintf(formatter.Writer, "✗ %d inconsistenc(ies) in %d records\n", len(findings), records)
		for _, f := range findings {
			fmt.Fprintf(formatter.Writer, "  %s\n", f.Error())
		}
	}

	if !result.Consistent {
		return NewExitError(ExitFailure, fmt.Sprintf("ledger has %d inconsistencies", len(findings)))
	}
	return nil
}
