package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink receives exported files.
type Sink interface {
	// Put stores the file at src under name.
	Put(ctx context.Context, name, src string) error

	// Location describes where files end up, for logs and reports.
	Location() string
}

// DirSink copies files into a local directory.
type DirSink struct {
	dir string
}

// NewDirSink creates dir (and its parents) and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Location implements Sink.
func (d *DirSink) Location() string {
	return d.dir
}

// Put implements Sink. The copy is written to a temporary file first and
// renamed into place, so a failed export never leaves a truncated image
// under its final name.
func (d *DirSink) Put(ctx context.Context, name, src string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(d.dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	dst := filepath.Join(d.dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename to %s: %w", dst, err)
	}
	return nil
}
