package export

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/isaaclb98/find-my-fav/internal/engine"
)

// DefaultConcurrency is the number of parallel copies when none is given.
const DefaultConcurrency = 4

// File is one exported item.
type File struct {
	Reference  string  `json:"reference"`
	Percentile float64 `json:"percentile"`
	Name       string  `json:"name"`
}

// Report describes a completed export.
type Report struct {
	Location string `json:"location"`
	Files    []File `json:"files"`
}

// Plan assigns the exported file name of every selection, in order.
func Plan(selections []engine.Selection) []File {
	names := make([]string, len(selections))
	for i, sel := range selections {
		names[i] = FileName(sel.Percentile, sel.Reference)
	}
	names = uniqueNames(names)

	files := make([]File, len(selections))
	for i, sel := range selections {
		files[i] = File{Reference: sel.Reference, Percentile: sel.Percentile, Name: names[i]}
	}
	return files
}

// Export copies every selection into sink with at most concurrency copies
// in flight. The first failure cancels the remaining copies and is returned.
func Export(ctx context.Context, sink Sink, selections []engine.Selection, concurrency int) (Report, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	files := Plan(selections)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, f := range files {
		g.Go(func() error {
			if err := sink.Put(gctx, f.Name, f.Reference); err != nil {
				return fmt.Errorf("export %s: %w", f.Reference, err)
			}
			slog.Debug("exported", "reference", f.Reference, "name", f.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	slog.Info("export complete", "location", sink.Location(), "files", len(files))
	return Report{Location: sink.Location(), Files: files}, nil
}
