package cli

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/isaaclb98/find-my-fav/internal/engine"
	"github.com/isaaclb98/find-my-fav/internal/export"
	"github.com/isaaclb98/find-my-fav/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions

	// Now allows overriding the clock used for the destination name (for
	// testing). If nil, time.Now is used.
	Now func() time.Time

	// S3Client allows overriding the S3 client (for testing). If nil, a
	// client is built from the default AWS configuration.
	S3Client export.S3API
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the best pictures of a finished tournament",
		Long: `Copy every picture at or above the export threshold into a new folder
named after the source folder and the current date, for example
Trip-20240309-5600. File names are prefixed with the percentile:
095.0_IMG_0042.jpg.

With --s3-bucket the pictures are uploaded under that key prefix instead.

Example:
  findmyfav export
  findmyfav export --dest /tmp/best --threshold 90
  findmyfav export --s3-bucket my-photos --s3-prefix favourites`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().String("dest", "", "parent folder of the export (default ~/Pictures/Favourites)")
	cmd.Flags().Float64("threshold", engine.DefaultExportThreshold, "minimum percentile to export")
	cmd.Flags().Int("concurrency", export.DefaultConcurrency, "parallel copies")
	cmd.Flags().String("s3-bucket", "", "upload to this S3 bucket instead of a folder")
	cmd.Flags().String("s3-prefix", "", "key prefix inside the bucket")
	cmd.Flags().String("s3-region", "", "bucket region (default from AWS config)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := opts.formatter(cmd)
	cfg := opts.Config

	st, err := opts.openStore(false)
	if err != nil {
		return err
	}
	defer closeStore(st)

	finished, err := st.IsTournamentFinished(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to read tournament", err)
	}
	if !finished {
		_ = formatter.Error("NOT_FINISHED", "tournament is not finished (keep playing with run)", nil)
		return NewExitError(ExitCommandError, "tournament is not finished")
	}

	source := ""
	tour, err := st.Tournament(ctx)
	switch {
	case err == nil:
		source = tour.Source
	case !errors.Is(err, store.ErrNoTournament):
		return formatter.Fail(ExitCommandError, "failed to read tournament", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	name := export.DestinationName(source, now())

	var sink export.Sink
	if bucket := cfg.Export.S3.Bucket; bucket != "" {
		prefix := path.Join(cfg.Export.S3.Prefix, name)
		if opts.S3Client != nil {
			s3Sink := export.NewS3SinkWithClient(opts.S3Client, bucket, prefix)
			err = s3Sink.Check(ctx)
			sink = s3Sink
		} else {
			sink, err = export.NewS3Sink(ctx, bucket, prefix, cfg.Export.S3.Region)
		}
	} else {
		sink, err = export.NewDirSink(filepath.Join(cfg.Export.Dir, name))
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to prepare destination", err)
	}

	selections, err := opts.newEngine(st).Select(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to select items", err)
	}
	formatter.VerboseLog("Exporting %d item(s) to %s", len(selections), sink.Location())

	report, err := export.Export(ctx, sink, selections, cfg.Export.Concurrency)
	if err != nil {
		return formatter.Fail(ExitCommandError, "export failed", err)
	}

	if formatter.JSON() {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ Exported %d picture(s) to %s\n", len(report.Files), report.Location)
	for _, f := range report.Files {
		fmt.Fprintf(formatter.Writer, "  %s\n", f.Name)
	}
	return nil
}
