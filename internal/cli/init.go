package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/isaaclb98/find-my-fav/internal/catalog"
	"github.com/isaaclb98/find-my-fav/internal/model"
)

// InitResult is the output of the init command.
type InitResult struct {
	Tournament string `json:"tournament"`
	Source     string `json:"source"`
	Found      int    `json:"found"`
	Inserted   int    `json:"inserted"`
	Items      int    `json:"items"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <folder>",
		Short: "Create a tournament from a folder of pictures",
		Long: `Scan a folder for pictures and add them to the catalog.

The database is created if it does not exist. Running init again before
the first decision adds pictures that were not there yet; once the
tournament has started the catalog is frozen.

Example:
  findmyfav init ~/Pictures/Trip
  findmyfav init --recursive --db trip.db ~/Pictures/Trip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().Bool("recursive", false, "include pictures in subfolders")

	return cmd
}

func runInit(opts *RootOptions, dir string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(true)
	if err != nil {
		return err
	}
	defer closeStore(st)

	formatter.VerboseLog("Scanning %s (recursive=%t)", dir, opts.Config.Scan.Recursive)
	res, err := catalog.Populate(ctx, st, dir, opts.Config.Scan.Recursive)
	switch {
	case errors.Is(err, model.ErrTournamentStarted):
		return formatter.Fail(ExitCommandError, "tournament already started", err)
	case errors.Is(err, catalog.ErrNoImages):
		return formatter.Fail(ExitCommandError, "nothing to rank", err)
	case err != nil:
		return formatter.Fail(ExitCommandError, "failed to populate catalog", err)
	}

	total, _, err := st.CountItems(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to count items", err)
	}

	result := InitResult{
		Tournament: res.Tournament.ID,
		Source:     res.Tournament.Source,
		Found:      res.Found,
		Inserted:   res.Inserted,
		Items:      total,
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Added %d of %d picture(s) from %s\n", result.Inserted, result.Found, result.Source)
	fmt.Fprintf(formatter.Writer, "  %d item(s) in catalog, tournament %s\n", result.Items, result.Tournament)
	return nil
}
