package epubmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// archiveExtension selects the files picked up by ConvertDir.
const archiveExtension = ".epub"

// ProgressFunc is called by ConvertDir after each archive is finished.
// index is the 1-based position of path among the archives found; err is
// non-nil when the archive failed. Calls are serialized.
type ProgressFunc func(index, total int, path string, res Result, err error)

// WithBatchWorkers sets how many archives ConvertDir converts concurrently.
// Values below 1 are treated as 1.
func WithBatchWorkers(n int) Option {
	return func(o *options) {
		o.batchWorkers = max(n, 1)
	}
}

// WithProgress registers fn to be told about every finished archive.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// Failure records an archive that could not be converted.
type Failure struct {
	Path string
	Err  error
}

// BatchResult is the outcome of ConvertDir. Both slices are ordered by
// source path.
type BatchResult struct {
	Converted []Result
	Failed    []Failure
}

// FindArchives returns the ".epub" files directly inside folder, sorted by
// name. Sub-directories are not searched.
func FindArchives(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("epubmd: folder %s: %w", folder, ErrNotFound)
		}
		return nil, fmt.Errorf("epubmd: read folder %s: %w", folder, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), archiveExtension) {
			continue
		}
		paths = append(paths, filepath.Join(folder, e.Name()))
	}
	return paths, nil
}

// ConvertDir converts every ePub found by FindArchives. Each Markdown file
// is written to outputFolder, created if needed, or next to its source when
// outputFolder is empty.
//
// Archives are converted on up to WithBatchWorkers goroutines, each with its
// own archive handle. A failing archive is recorded in BatchResult.Failed and
// the others still run. Once ctx is done, archives not yet started are
// recorded as failed with ctx.Err(), conversions already running finish, and
// ctx.Err() is returned along with the partial result.
func ConvertDir(ctx context.Context, folder, outputFolder string, opts ...Option) (BatchResult, error) {
	o := newOptions(opts)

	paths, err := FindArchives(folder)
	if err != nil {
		return BatchResult{}, err
	}
	if len(paths) == 0 {
		o.logger.Info("no ePub files found", "folder", folder)
		return BatchResult{}, nil
	}

	if outputFolder != "" {
		if err := os.MkdirAll(outputFolder, 0o755); err != nil {
			return BatchResult{}, fmt.Errorf("epubmd: create output folder %s: %w", outputFolder, err)
		}
	}

	o.logger.Info("converting folder", "folder", folder, "archives", len(paths))

	results := make([]Result, len(paths))
	errs := make([]error, len(paths))

	var mu sync.Mutex
	report := func(i int) {
		if o.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		o.progress(i+1, len(paths), paths[i], results[i], errs[i])
	}

	var g errgroup.Group
	g.SetLimit(o.batchWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				report(i)
				return nil
			}
			results[i], errs[i] = convert(p, batchOutputPath(p, outputFolder), o)
			if errs[i] != nil {
				o.logger.Warn("archive conversion failed", "archive", p, "error", errs[i])
			}
			report(i)
			return nil
		})
	}
	_ = g.Wait()

	var br BatchResult
	for i, p := range paths {
		if errs[i] != nil {
			br.Failed = append(br.Failed, Failure{Path: p, Err: errs[i]})
			continue
		}
		br.Converted = append(br.Converted, results[i])
	}

	o.logger.Info("folder conversion finished",
		"folder", folder,
		"converted", len(br.Converted),
		"failed", len(br.Failed),
	)
	return br, ctx.Err()
}

func batchOutputPath(archivePath, outputFolder string) string {
	out := DefaultOutputPath(archivePath)
	if outputFolder == "" {
		return out
	}
	return filepath.Join(outputFolder, filepath.Base(out))
}
