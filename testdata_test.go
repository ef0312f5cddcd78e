package epubmd

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// zipEntry is a single file written by buildTestZipBytes, in slice order.
type zipEntry struct {
	Name    string
	Content string
}

// buildTestZipBytes creates an in-memory ZIP archive holding entries in the
// given order. It calls t.Fatal on any error.
func buildTestZipBytes(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		fw, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("buildTestZipBytes: create %s: %v", e.Name, err)
		}
		if _, err := io.WriteString(fw, e.Content); err != nil {
			t.Fatalf("buildTestZipBytes: write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildTestZipBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// buildTestZip creates an in-memory ZIP archive from the provided files map
// (path → content) and returns a *zip.Reader over the resulting bytes.
func buildTestZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	var entries []zipEntry
	for name, content := range files {
		entries = append(entries, zipEntry{name, content})
	}
	data := buildTestZipBytes(t, entries)
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestZip: open reader: %v", err)
	}
	return r
}

// testEPubEntries prepends a mimetype entry to parts, as the ePub
// packaging convention requires.
func testEPubEntries(parts ...zipEntry) []zipEntry {
	return append([]zipEntry{{"mimetype", "application/epub+zip"}}, parts...)
}

// buildTestArchive returns an Archive over an in-memory ePub made of parts.
func buildTestArchive(t *testing.T, parts ...zipEntry) *Archive {
	t.Helper()
	data := buildTestZipBytes(t, testEPubEntries(parts...))
	a, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildTestArchive: NewReader() error = %v", err)
	}
	return a
}

// buildTestEPubFile writes an ePub made of parts to dir (a fresh temporary
// directory when dir is empty) and returns the file path.
func buildTestEPubFile(t *testing.T, dir, name string, parts ...zipEntry) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	fp := filepath.Join(dir, name)
	if err := os.WriteFile(fp, buildTestZipBytes(t, testEPubEntries(parts...)), 0644); err != nil {
		t.Fatalf("buildTestEPubFile: write file: %v", err)
	}
	return fp
}

// xhtml wraps body in a minimal XHTML document.
func xhtml(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><meta charset="utf-8"/></head>
<body>` + body + `</body>
</html>`
}
