package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/model"
	"github.com/isaaclb98/find-my-fav/internal/store"
)

// StatusResult is the output of the status command.
type StatusResult struct {
	Tournament model.Tournament `json:"tournament"`
	Progress   engine.Progress  `json:"progress"`
	Percent    float64          `json:"percent"`
	Champion   *model.Item      `json:"champion,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tournament progress",
		Long: `Show the current round, how many pairings have been decided and how
many items are still in play. Status only reads the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st)

	var result StatusResult
	result.Tournament, err = st.Tournament(ctx)
	if err != nil && !errors.Is(err, store.ErrNoTournament) {
		return formatter.Fail(ExitCommandError, "failed to read tournament", err)
	}

	result.Progress, err = engine.ReadProgress(ctx, st)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read progress", err)
	}
	result.Percent = result.Progress.Percent()

	if result.Progress.Finished {
		live, err := st.ListLiveItems(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to read champion", err)
		}
		if len(live) == 1 {
			result.Champion = &live[0]
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	p := result.Progress
	w := formatter.Writer
	if result.Tournament.ID != "" {
		fmt.Fprintf(w, "Tournament: %s\n", result.Tournament.ID)
		fmt.Fprintf(w, "Source:     %s\n", result.Tournament.Source)
	}
	fmt.Fprintf(w, "Round:      %d of %d\n", p.Round, p.TotalRounds)
	fmt.Fprintf(w, "Decided:    %d of %d pairings (%.1f%%)\n", p.Resolved, p.Expected, result.Percent)
	fmt.Fprintf(w, "Items:      %d (%d live, %d waiting this round)\n", p.Items, p.Live, p.Pending)
	switch {
	case result.Champion != nil:
		fmt.Fprintf(w, "Status:     finished, champion %s\n", result.Champion.Reference)
	case p.Finished:
		fmt.Fprintln(w, "Status:     finished without a champion")
	default:
		fmt.Fprintln(w, "Status:     in progress")
	}
	return nil
}
