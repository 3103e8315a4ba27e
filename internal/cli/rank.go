package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isaaclb98/find-my-fav/internal/engine"
)

// RankResult is the output of the rank command.
type RankResult struct {
	Finished  bool            `json:"finished"`
	Threshold float64         `json:"threshold"`
	Ranking   []engine.Ranked `json:"ranking"`
}

// NewRankCommand creates the rank command.
func NewRankCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show the ranking",
		Long: `List every item by number of pairings won, with its percentile.
Items at or above the export threshold are marked with *. Before the
tournament finishes the ranking is provisional.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(rootOpts, cmd)
		},
	}

	cmd.Flags().Float64("threshold", engine.DefaultExportThreshold, "minimum percentile to export")

	return cmd
}

func runRank(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st)

	eng := opts.newEngine(st)
	ranking, err := eng.Rank(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to rank items", err)
	}
	finished, err := st.IsTournamentFinished(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read tournament", err)
	}

	result := RankResult{
		Finished:  finished,
		Threshold: eng.Ranker().Threshold(),
		Ranking:   ranking,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if !finished {
		fmt.Fprintln(w, "Tournament in progress; ranking is provisional.")
	}
	for _, r := range ranking {
		mark := " "
		if r.Export {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %4d  %5.1f  %3d  %s\n", mark, r.Rank, r.Percentile, r.Item.Rating, r.Item.Reference)
	}
	return nil
}
