package epubmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Separator is placed between the Markdown fragments of consecutive document parts.
const Separator = "\n\n---\n\n"

// Option configures Render, Convert and ConvertDir.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	workers      int
	batchWorkers int
	progress     ProgressFunc
}

func newOptions(opts []Option) options {
	o := options{
		logger:       slog.New(slog.DiscardHandler),
		workers:      1,
		batchWorkers: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger receiving skipped-part warnings and progress
// records. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers sets how many document parts of one archive are converted
// concurrently. Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// Document is the Markdown rendering of one archive.
type Document struct {
	// Markdown is the non-empty part fragments joined with Separator.
	Markdown string

	// Fragments is the number of parts that contributed text.
	Fragments int

	// Skipped lists the parts that could not be read or decoded.
	Skipped []*PartError
}

// Render converts every document part of a to Markdown. Parts are read from
// the archive one after another; conversion of the decoded parts runs on up
// to WithWorkers goroutines. Fragments are joined in part order, and parts
// whose fragment is empty are left out.
//
// Unreadable parts are logged as warnings and reported in Document.Skipped.
func Render(a *Archive, opts ...Option) Document {
	o := newOptions(opts)
	return render(a, o)
}

func render(a *Archive, o options) Document {
	var doc Document
	var parts []Part
	for p, err := range a.Parts() {
		if err != nil {
			pe := asPartError(p.Name, err)
			o.logger.Warn("skipping document part", "part", pe.Name, "error", pe.Err)
			doc.Skipped = append(doc.Skipped, pe)
			continue
		}
		parts = append(parts, p)
	}

	fragments := make([]string, len(parts))
	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, p := range parts {
		g.Go(func() error {
			fragments[i] = ToMarkdown(p.Markup)
			return nil
		})
	}
	_ = g.Wait() // conversion never fails

	kept := fragments[:0]
	for _, f := range fragments {
		if f != "" {
			kept = append(kept, f)
		}
	}
	doc.Markdown = strings.Join(kept, Separator)
	doc.Fragments = len(kept)
	return doc
}

func asPartError(name string, err error) *PartError {
	var pe *PartError
	if errors.As(err, &pe) {
		return pe
	}
	return &PartError{Name: name, Err: err}
}

// Result describes one completed archive conversion.
type Result struct {
	// Source is the path of the converted ePub.
	Source string

	// OutputPath is where the Markdown was written.
	OutputPath string

	// Chars is the length of the written Markdown in characters (code points).
	Chars int

	// Fragments is the number of document parts that contributed text.
	Fragments int

	// Skipped lists the parts that could not be read or decoded.
	Skipped []*PartError
}

// Convert converts the ePub at archivePath and writes the Markdown to
// outputPath, replacing any existing file.
//
// Archive-level failures (ErrNotFound, ErrInvalidArchive, ErrDRMProtected)
// and a failed write are returned; part-level failures are only logged and
// recorded in Result.Skipped.
func Convert(archivePath, outputPath string, opts ...Option) (Result, error) {
	o := newOptions(opts)
	return convert(archivePath, outputPath, o)
}

func convert(archivePath, outputPath string, o options) (Result, error) {
	a, err := Open(archivePath)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()

	for _, w := range a.Warnings() {
		o.logger.Warn("archive warning", "archive", archivePath, "warning", w)
	}

	doc := render(a, o)

	if err := os.WriteFile(outputPath, []byte(doc.Markdown), 0o644); err != nil {
		return Result{}, fmt.Errorf("epubmd: write %s: %w", outputPath, err)
	}

	res := Result{
		Source:     archivePath,
		OutputPath: outputPath,
		Chars:      utf8.RuneCountInString(doc.Markdown),
		Fragments:  doc.Fragments,
		Skipped:    doc.Skipped,
	}
	o.logger.Info("converted archive",
		"archive", archivePath,
		"output", outputPath,
		"chars", res.Chars,
		"fragments", res.Fragments,
		"skipped", len(res.Skipped),
	)
	return res, nil
}

// DefaultOutputPath returns epubPath with its extension replaced by ".md".
func DefaultOutputPath(epubPath string) string {
	return strings.TrimSuffix(epubPath, filepath.Ext(epubPath)) + ".md"
}
