package epubmd

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"slices"
	"strings"
	"unicode/utf8"
)

// expectedMimetype is the required content of the "mimetype" file in a valid ePub.
const expectedMimetype = "application/epub+zip"

// Part is one HTML/XHTML document inside an ePub archive.
type Part struct {
	// Name is the ZIP-internal path of the document.
	Name string

	// Markup is the UTF-8 decoded document text with any leading BOM removed.
	Markup string
}

// Archive lists and reads the document parts of an ePub file.
// Use Open or NewReader to create an Archive.
//
// An Archive is not safe for concurrent use by multiple goroutines.
type Archive struct {
	zip      *zip.Reader
	closer   io.Closer // non-nil only when created via Open()
	parts    []*zip.File
	warnings []string
}

// Open opens the ePub file at path. The caller must call Close when done.
//
// Open returns an error wrapping ErrNotFound if path does not exist,
// ErrInvalidArchive if the file is not a ZIP container and ErrDRMProtected
// if its content is encrypted.
func Open(path string) (*Archive, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("epubmd: open %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("epubmd: open %s: %w", path, err)
	}

	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("epubmd: open %s: %w: %v", path, ErrInvalidArchive, err)
	}

	a, err := initArchive(&zrc.Reader, zrc)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return a, nil
}

// NewReader creates an Archive from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r; Close only cleans
// up internal state.
func NewReader(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("epubmd: open zip: %w: %v", ErrInvalidArchive, err)
	}
	return initArchive(zr, nil)
}

func initArchive(zr *zip.Reader, closer io.Closer) (*Archive, error) {
	a := &Archive{
		zip:    zr,
		closer: closer,
	}

	a.validateMimetype()

	fontObfuscation, err := checkDRM(zr)
	if err != nil {
		return nil, err
	}
	if fontObfuscation {
		a.warnings = append(a.warnings, "font obfuscation detected; obfuscated fonts are ignored")
	}

	a.parts = selectParts(zr.File)
	return a, nil
}

// selectParts keeps the HTML/XHTML entries, orders them by name and drops
// navigation, table of contents and copyright pages.
//
// Name order approximates reading order; the spine is not consulted.
func selectParts(files []*zip.File) []*zip.File {
	var docs []*zip.File
	for _, f := range files {
		if isDocumentPart(f.Name) {
			docs = append(docs, f)
		}
	}

	slices.SortStableFunc(docs, func(x, y *zip.File) int {
		return strings.Compare(x.Name, y.Name)
	})

	return slices.DeleteFunc(docs, func(f *zip.File) bool {
		return isExcludedPart(f.Name)
	})
}

// validateMimetype checks that the first ZIP entry is named "mimetype" and
// contains "application/epub+zip". Deviations are recorded as warnings.
func (a *Archive) validateMimetype() {
	if len(a.zip.File) == 0 {
		a.warnings = append(a.warnings, "empty ZIP archive; mimetype entry missing")
		return
	}

	first := a.zip.File[0]
	if first.Name != "mimetype" {
		a.warnings = append(a.warnings, "first ZIP entry is not \"mimetype\"")
		return
	}

	data, err := readEntry(first)
	if err != nil {
		a.warnings = append(a.warnings, fmt.Sprintf("cannot read mimetype entry: %v", err))
		return
	}
	if strings.TrimSpace(string(data)) != expectedMimetype {
		a.warnings = append(a.warnings, fmt.Sprintf("unexpected mimetype: %q", string(data)))
	}
}

// Close releases resources held by the Archive. When the Archive was created
// via Open, Close closes the underlying file. Close is idempotent.
func (a *Archive) Close() error {
	if a.closer != nil {
		err := a.closer.Close()
		a.closer = nil
		return err
	}
	return nil
}

// Names returns the names of the document parts in conversion order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.parts))
	for i, f := range a.parts {
		names[i] = f.Name
	}
	return names
}

// Warnings returns the non-fatal warnings recorded while opening the archive.
func (a *Archive) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

// Parts returns an iterator over the document parts in conversion order.
// Each part is read from the archive when the iterator reaches it, and every
// call starts again from the first part.
//
// A part that cannot be read or decoded is yielded with a *PartError and an
// empty Markup; iteration continues with the next part.
func (a *Archive) Parts() iter.Seq2[Part, error] {
	return func(yield func(Part, error) bool) {
		for _, f := range a.parts {
			p, err := readPart(f)
			if !yield(p, err) {
				return
			}
		}
	}
}

// readPart reads and decodes a single document part.
func readPart(f *zip.File) (Part, error) {
	p := Part{Name: f.Name}

	data, err := readEntry(f)
	if err != nil {
		return p, &PartError{Name: f.Name, Err: err}
	}
	data = stripBOM(data)
	if !utf8.Valid(data) {
		return p, &PartError{Name: f.Name, Err: ErrDecode}
	}

	p.Markup = string(data)
	return p, nil
}

// ExtractDocumentParts opens the ePub at path, reads every document part and
// closes the archive again. Per-part failures are returned in partErrs and do
// not prevent the remaining parts from being read; err is set only for
// archive-level failures.
func ExtractDocumentParts(path string) (parts []Part, partErrs []error, err error) {
	a, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer a.Close()

	for p, perr := range a.Parts() {
		if perr != nil {
			partErrs = append(partErrs, perr)
			continue
		}
		parts = append(parts, p)
	}
	return parts, partErrs, nil
}
