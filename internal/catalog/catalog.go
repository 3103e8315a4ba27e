// Package catalog populates the item catalog from a folder of images and
// checks whether an item can still be shown.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"

	"github.com/isaaclb98/find-my-fav/internal/model"
)

// ErrNoImages is returned when a folder holds no image files.
var ErrNoImages = errors.New("no images found")

// Store is the part of the store population needs.
type Store interface {
	InsertItems(ctx context.Context, refs []string) (int, error)
	EnsureTournament(ctx context.Context, id, source string) (model.Tournament, error)
}

// Result summarizes one population run.
type Result struct {
	Found      int              `json:"found"`
	Inserted   int              `json:"inserted"`
	Tournament model.Tournament `json:"tournament"`
}

// Reference turns a file path into a catalog reference: absolute, cleaned
// and NFC-normalized, so the same file found through differently composed
// names maps to a single item.
func Reference(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("reference %q: %w", path, err)
	}
	return norm.NFC.String(abs), nil
}

// IsImage reports whether the file content is an image, by signature.
func IsImage(path string) (bool, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(mt.String(), "image/"), nil
}

// Scan returns the references of every image file under dir in lexical
// order. Subfolders are only descended into when recursive is set. Files
// that are not images by content are skipped regardless of extension.
func Scan(ctx context.Context, dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan: %s is not a directory", dir)
	}

	refs := []string{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ok, err := IsImage(path)
		if err != nil {
			slog.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		if !ok {
			slog.Debug("skipping non-image file", "path", path)
			return nil
		}

		ref, err := Reference(path)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return refs, nil
}

// Populate scans dir, inserts every image found and creates the tournament
// row with dir as its source. Running it again on the same folder before
// the first decision only adds new files; after the first decision the
// store refuses with TOURNAMENT_STARTED.
func Populate(ctx context.Context, s Store, dir string, recursive bool) (Result, error) {
	refs, err := Scan(ctx, dir, recursive)
	if err != nil {
		return Result{}, err
	}
	if len(refs) == 0 {
		return Result{}, fmt.Errorf("populate %s: %w", dir, ErrNoImages)
	}

	inserted, err := s.InsertItems(ctx, refs)
	if err != nil {
		return Result{}, fmt.Errorf("populate: %w", err)
	}

	source, err := Reference(dir)
	if err != nil {
		return Result{}, err
	}
	tour, err := s.EnsureTournament(ctx, "", source)
	if err != nil {
		return Result{}, fmt.Errorf("populate: %w", err)
	}

	slog.Info("catalog populated",
		"source", source,
		"found", len(refs),
		"inserted", inserted,
		"tournament", tour.ID,
	)
	return Result{Found: len(refs), Inserted: inserted, Tournament: tour}, nil
}

// Probe checks that the item behind a reference can still be rendered:
// the file exists, is readable and its content is an image. A nil error
// means the item can be shown.
func Probe(ref string) error {
	ok, err := IsImage(ref)
	if err != nil {
		return fmt.Errorf("probe %s: %w", ref, err)
	}
	if !ok {
		return fmt.Errorf("probe %s: not an image", ref)
	}
	return nil
}
