package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/isaaclb98/find-my-fav/internal/config"
	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/logging"
	"github.com/isaaclb98/find-my-fav/internal/model"
	"github.com/isaaclb98/find-my-fav/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	EnvFile    string
	DB         string

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// flagKeys maps configuration keys to the flags that override them. A
// command that does not define a flag simply leaves the key alone.
var flagKeys = map[string]string{
	"db":                 "db",
	"seed":               "seed",
	"export.threshold":   "threshold",
	"export.dir":         "dest",
	"export.concurrency": "concurrency",
	"export.s3.bucket":   "s3-bucket",
	"export.s3.prefix":   "s3-prefix",
	"export.s3.region":   "s3-region",
	"metrics.addr":       "metrics-addr",
	"scan.recursive":     "recursive",
	"log.level":          "log-level",
}

// NewRootCommand creates the root command for the findmyfav CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "findmyfav",
		Short:   "findmyfav - find your favourite pictures",
		Version: model.EngineVersion,
		Long: `Rank a folder of pictures with a single-elimination tournament.

Pictures are shown two at a time; the one you prefer stays in. Every
decision is stored immediately, so a tournament can be stopped and
resumed at any point. When it finishes, the best pictures are copied
to an export folder with their percentile in the file name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return loadConfig(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./"+config.DefaultFileName+")")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file (default ./.env)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite database (default findmyfav.db)")
	cmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewRankCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig resolves the configuration for cmd and installs the logger.
func loadConfig(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{
		File:     opts.ConfigFile,
		EnvFile:  opts.EnvFile,
		Flags:    cmd.Flags(),
		FlagKeys: flagKeys,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logging.Setup(cmd.ErrOrStderr(), level, cfg.Log.Format)

	opts.Config = cfg
	return nil
}

// formatter builds the output formatter of a command.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openStore opens the configured database. Only init may create one; every
// other command requires an existing file.
func (opts *RootOptions) openStore(create bool) (*store.Store, error) {
	path := opts.Config.DB
	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, WrapExitError(ExitCommandError, "database not found (run init first)", err)
		}
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// newEngine builds an engine over st with the configured seed and threshold.
func (opts *RootOptions) newEngine(st *store.Store, extra ...engine.Option) *engine.Engine {
	engOpts := []engine.Option{
		engine.WithShuffler(engine.ShufflerFor(opts.Config.Seed)),
		engine.WithExportThreshold(opts.Config.Export.Threshold),
	}
	return engine.New(st, append(engOpts, extra...)...)
}

// commandContext returns the command's context, or a background context
// when the command is executed without one.
// closeStore closes the database, logging rather than returning the error
// since the command's own result has already been decided.
func closeStore(st io.Closer) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
