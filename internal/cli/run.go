package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/isaaclb98/find-my-fav/internal/catalog"
	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/metrics"
	"github.com/isaaclb98/find-my-fav/internal/model"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// Presenter allows overriding the terminal presenter (for testing).
	// If nil, a TerminalPresenter on the command's stdin/stdout is used.
	Presenter engine.Presenter
}

// RunResult is the output of the run command.
type RunResult struct {
	Finished bool        `json:"finished"`
	Stopped  bool        `json:"stopped"`
	Round    int         `json:"round"`
	Resolved int         `json:"resolved"`
	Champion *model.Item `json:"champion,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play the tournament",
		Long: `Resume the tournament and present pairings until it finishes.

Answer 1 or 2 to keep a picture, q to stop. Every answer is saved before
the next pairing is shown, so stopping (or Ctrl-C) loses nothing; run
again to continue where you left off. Pictures that can no longer be read
are eliminated without asking.

Example:
  findmyfav run
  findmyfav run --seed 42 --metrics-addr 127.0.0.1:9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTournament(opts, cmd)
		},
	}

	cmd.Flags().Uint64("seed", 0, "pairing seed (0 = random)")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on host:port")

	return cmd
}

func runTournament(opts *RunOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := opts.openStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, pausing", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	presenter := opts.Presenter
	if presenter == nil {
		// Prompts must not end up in JSON output.
		prompts := cmd.OutOrStdout()
		if formatter.JSON() {
			prompts = cmd.ErrOrStderr()
		}
		terminal := NewTerminalPresenter(cmd.InOrStdin(), prompts, catalog.Probe)
		defer terminal.Close()
		presenter = terminal
	}

	var extra []engine.Option
	if addr := opts.Config.Metrics.Addr; addr != "" {
		collector := metrics.NewCollector()
		if _, err := collector.Serve(ctx, addr); err != nil {
			return formatter.Fail(ExitCommandError, "failed to start metrics server", err)
		}
		progress, err := engine.ReadProgress(ctx, st)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to read progress", err)
		}
		collector.SetPosition(progress.Round, progress.Live, progress.Finished)

		extra = append(extra, engine.WithObserver(collector))
		presenter = collector.Presenter(presenter)
	}

	eng := opts.newEngine(st, extra...)
	res, err := eng.Run(ctx, presenter)
	if errors.Is(err, context.Canceled) {
		res.Stopped = true
		err = nil
	}
	switch {
	case model.IsEmptyCatalog(err):
		return formatter.Fail(ExitCommandError, "catalog is empty (run init first)", err)
	case model.IsLedgerCorrupt(err):
		return formatter.Fail(ExitCommandError, "ledger is inconsistent (see verify)", err)
	case err != nil:
		return formatter.Fail(ExitCommandError, "tournament failed", err)
	}

	result := RunResult{
		Finished: res.Finished,
		Stopped:  res.Stopped,
		Round:    res.Round,
		Resolved: res.Resolved,
	}
	if !res.Champion.IsNone() {
		champion, err := st.Item(ctx, res.Champion)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to load champion", err)
		}
		result.Champion = &champion
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	switch {
	case result.Finished && result.Champion != nil:
		fmt.Fprintf(w, "\n✓ Tournament finished in round %d\n", result.Round)
		fmt.Fprintf(w, "  Champion: %s\n", result.Champion.Reference)
	case result.Finished:
		fmt.Fprintf(w, "\n✓ Tournament finished in round %d without a champion\n", result.Round)
	default:
		fmt.Fprintf(w, "\nPaused in round %d after %d decision(s). Run again to continue.\n",
			result.Round, result.Resolved)
	}
	return nil
}
