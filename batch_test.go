package epubmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
)

func TestFindArchives(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.epub", "a.epub", "notes.txt", "upper.EPUB"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.epub"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindArchives(dir)
	if err != nil {
		t.Fatalf("FindArchives() error = %v", err)
	}
	want := []string{filepath.Join(dir, "a.epub"), filepath.Join(dir, "b.epub")}
	if !slices.Equal(got, want) {
		t.Errorf("FindArchives() = %v; want %v", got, want)
	}

	if _, err := FindArchives(filepath.Join(dir, "missing")); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindArchives(missing) error = %v; want ErrNotFound", err)
	}
}

func TestConvertDir(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "md")

	for i := range 5 {
		buildTestEPubFile(t, src, fmt.Sprintf("book%d.epub", i),
			zipEntry{"chap1.xhtml", fmt.Sprintf("<h1>Book %d</h1>", i)},
		)
	}
	if err := os.WriteFile(filepath.Join(src, "broken.epub"), []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			var mu sync.Mutex
			var seen []int
			progress := func(index, total int, path string, res Result, err error) {
				mu.Lock()
				defer mu.Unlock()
				if total != 6 {
					t.Errorf("progress total = %d; want 6", total)
				}
				seen = append(seen, index)
			}

			br, err := ConvertDir(context.Background(), src, out,
				WithBatchWorkers(workers), WithProgress(progress))
			if err != nil {
				t.Fatalf("ConvertDir() error = %v", err)
			}

			if len(br.Converted) != 5 {
				t.Fatalf("Converted = %d; want 5", len(br.Converted))
			}
			for i, res := range br.Converted {
				wantOut := filepath.Join(out, fmt.Sprintf("book%d.md", i))
				if res.OutputPath != wantOut {
					t.Errorf("Converted[%d].OutputPath = %q; want %q", i, res.OutputPath, wantOut)
				}
				data, err := os.ReadFile(wantOut)
				if err != nil {
					t.Fatalf("read %s: %v", wantOut, err)
				}
				if want := fmt.Sprintf("# Book %d", i); string(data) != want {
					t.Errorf("%s = %q; want %q", wantOut, data, want)
				}
			}

			if len(br.Failed) != 1 || filepath.Base(br.Failed[0].Path) != "broken.epub" {
				t.Fatalf("Failed = %+v; want broken.epub", br.Failed)
			}
			if !errors.Is(br.Failed[0].Err, ErrInvalidArchive) {
				t.Errorf("Failed[0].Err = %v; want ErrInvalidArchive", br.Failed[0].Err)
			}

			slices.Sort(seen)
			if !slices.Equal(seen, []int{1, 2, 3, 4, 5, 6}) {
				t.Errorf("progress indexes = %v", seen)
			}
		})
	}
}

func TestConvertDir_OutputNextToSource(t *testing.T) {
	src := t.TempDir()
	buildTestEPubFile(t, src, "novel.epub", zipEntry{"a.xhtml", "<p>text</p>"})

	br, err := ConvertDir(context.Background(), src, "")
	if err != nil {
		t.Fatalf("ConvertDir() error = %v", err)
	}
	if len(br.Converted) != 1 || br.Converted[0].OutputPath != filepath.Join(src, "novel.md") {
		t.Errorf("Converted = %+v", br.Converted)
	}
}

func TestConvertDir_EmptyAndMissing(t *testing.T) {
	br, err := ConvertDir(context.Background(), t.TempDir(), "")
	if err != nil {
		t.Fatalf("ConvertDir(empty) error = %v", err)
	}
	if len(br.Converted) != 0 || len(br.Failed) != 0 {
		t.Errorf("ConvertDir(empty) = %+v", br)
	}

	_, err = ConvertDir(context.Background(), filepath.Join(t.TempDir(), "missing"), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ConvertDir(missing) error = %v; want ErrNotFound", err)
	}
}

func TestConvertDir_Canceled(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	for i := range 3 {
		buildTestEPubFile(t, src, fmt.Sprintf("book%d.epub", i), zipEntry{"a.xhtml", "<p>x</p>"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	br, err := ConvertDir(ctx, src, out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ConvertDir() error = %v; want context.Canceled", err)
	}
	if len(br.Converted) != 0 || len(br.Failed) != 3 {
		t.Errorf("ConvertDir() = %d converted, %d failed; want 0, 3", len(br.Converted), len(br.Failed))
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("no output expected after cancellation, found %d files", len(entries))
	}
}
