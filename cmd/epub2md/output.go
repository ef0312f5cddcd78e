package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/simp-lee/epubmd"
)

const (
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

// printer writes user-facing progress lines. Diagnostics go to the logger.
type printer struct {
	w        io.Writer
	colorize bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, colorize: shouldColorize(w)}
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *printer) mark(ok bool) string {
	sym, color := "✓", ansiGreen
	if !ok {
		sym, color = "✗", ansiRed
	}
	if p.colorize {
		return color + sym + ansiReset
	}
	return sym
}

func (p *printer) success(res epubmd.Result) {
	p.printf("%s Conversion complete: %s\n", p.mark(true), res.OutputPath)
	p.printf("  Output size: %s\n", formatChars(res.Chars))
	if n := len(res.Skipped); n > 0 {
		p.printf("  Skipped parts: %d\n", n)
	}
}

func (p *printer) failure(name string, err error) {
	p.printf("%s Failed to convert %s: %s\n", p.mark(false), name, firstLine(err))
}

func (p *printer) summary(br epubmd.BatchResult) {
	p.printf("%s\n", strings.Repeat("=", 60))
	p.printf("Conversion Summary:\n")
	p.printf("  Successfully converted: %d\n", len(br.Converted))
	p.printf("  Failed: %d\n", len(br.Failed))
	if len(br.Failed) == 0 {
		return
	}

	p.printf("\nFailed files:\n")
	rows := make([][]string, 0, len(br.Failed))
	for i, name := range failedNames(br) {
		rows = append(rows, []string{name, firstLine(br.Failed[i].Err)})
	}
	p.printf("%s\n", renderTable([]string{"File", "Error"}, rows))
}

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
