package epubmd

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
)

// entryLimit caps the decompressed size of any single ZIP entry (256 MB).
const entryLimit int64 = 256 << 20

var (
	documentExtensions    = []string{".html", ".xhtml", ".htm"}
	excludedNameFragments = []string{"nav", "toc", "copyright"}

	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

func containsAny(s string, match func(string, string) bool, subs []string) bool {
	return slices.ContainsFunc(subs, func(sub string) bool { return match(s, sub) })
}

// isDocumentPart reports whether name ends in .html, .xhtml or .htm, ignoring case.
func isDocumentPart(name string) bool {
	return containsAny(strings.ToLower(name), strings.HasSuffix, documentExtensions)
}

// isExcludedPart reports whether the lowercased path contains "nav", "toc" or
// "copyright" anywhere, so "OEBPS/navigation/ch1.xhtml" is excluded as well.
func isExcludedPart(name string) bool {
	return containsAny(strings.ToLower(name), strings.Contains, excludedNameFragments)
}

// findEntry returns the entry named name, preferring an exact match over a
// case-insensitive one, or nil.
func findEntry(zr *zip.Reader, name string) *zip.File {
	if i := slices.IndexFunc(zr.File, func(f *zip.File) bool { return f.Name == name }); i >= 0 {
		return zr.File[i]
	}
	if i := slices.IndexFunc(zr.File, func(f *zip.File) bool { return strings.EqualFold(f.Name, name) }); i >= 0 {
		return zr.File[i]
	}
	return nil
}

// isSafePath reports whether p stays inside the archive root once cleaned.
func isSafePath(p string) bool {
	cleaned := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	switch {
	case path.IsAbs(cleaned), cleaned == "..", strings.HasPrefix(cleaned, "../"):
		return false
	}
	return true
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

func readEntry(f *zip.File) ([]byte, error) {
	return readEntryLimit(f, entryLimit)
}

// readEntryLimit reads f fully, rejecting traversal paths and anything that
// decompresses to more than limit bytes, whatever size the header declares.
func readEntryLimit(f *zip.File, limit int64) ([]byte, error) {
	switch {
	case !isSafePath(f.Name):
		return nil, fmt.Errorf("epubmd: unsafe zip entry path: %s", f.Name)
	case f.UncompressedSize64 > uint64(limit):
		return nil, fmt.Errorf("epubmd: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epubmd: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("epubmd: read zip entry %s: %w", f.Name, err)
	}
	if n > limit {
		return nil, fmt.Errorf("epubmd: zip entry %s decompressed size exceeds limit (%d bytes)", f.Name, limit)
	}
	return buf.Bytes(), nil
}
