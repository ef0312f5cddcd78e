package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/simp-lee/epubmd"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	var (
		outputFlag       string
		allFlag          bool
		folderFlag       string
		outputFolderFlag string
	)

	rootCmd := &cobra.Command{
		Use:   "epub2md [book.epub]",
		Short: "Convert ePub files to Markdown",
		Example: `  epub2md book.epub
  epub2md book.epub -o output.md
  epub2md --all
  epub2md --all --folder /path/to/books
  epub2md --all --output-folder ./markdown_books`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts := []epubmd.Option{
				epubmd.WithLogger(logger),
				epubmd.WithWorkers(ctx.config.Convert.Workers),
				epubmd.WithBatchWorkers(ctx.config.Convert.BatchWorkers),
			}
			p := newPrinter(cmd.OutOrStdout())

			if allFlag {
				outFolder := outputFolderFlag
				if outFolder == "" {
					outFolder = ctx.config.Convert.OutputFolder
				}
				return runBatch(cmd, p, folderFlag, outFolder, opts)
			}

			if len(args) == 0 {
				return errors.New("epub_file is required when not using --all")
			}
			return runSingle(p, args[0], outputFlag, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	pf.StringVar(&ctx.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&ctx.logFormat, "log-format", "", "Log format (console, json)")

	f := rootCmd.Flags()
	f.StringVarP(&outputFlag, "output", "o", "", "Output Markdown file path (optional)")
	f.BoolVar(&allFlag, "all", false, "Convert all ePub files in the current (or specified) folder")
	f.StringVar(&folderFlag, "folder", ".", "Folder to search for ePub files (used with --all)")
	f.StringVar(&outputFolderFlag, "output-folder", "", "Output folder for converted files (used with --all)")
	f.IntVar(&ctx.workers, "workers", 1, "Document parts converted concurrently per book")
	f.IntVar(&ctx.batchWorkers, "batch-workers", 1, "Books converted concurrently (used with --all)")

	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func runSingle(p *printer, epubPath, outputPath string, opts []epubmd.Option) error {
	if outputPath == "" {
		outputPath = epubmd.DefaultOutputPath(epubPath)
	}

	p.printf("Converting %s to Markdown...\n", epubPath)
	res, err := epubmd.Convert(epubPath, outputPath, opts...)
	if err != nil {
		return err
	}
	p.success(res)
	return nil
}

func runBatch(cmd *cobra.Command, p *printer, folder, outputFolder string, opts []epubmd.Option) error {
	paths, err := epubmd.FindArchives(folder)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		p.printf("No EPUB files found in %s\n", folder)
		return nil
	}
	p.printf("Found %d EPUB file(s) in %s\n\n", len(paths), folder)

	opts = append(opts, epubmd.WithProgress(func(index, total int, path string, res epubmd.Result, err error) {
		p.printf("[%d/%d] Processing: %s\n", index, total, filepath.Base(path))
		if err != nil {
			p.failure(filepath.Base(path), err)
		} else {
			p.success(res)
		}
		p.printf("\n")
	}))

	br, err := epubmd.ConvertDir(cmd.Context(), folder, outputFolder, opts...)
	p.summary(br)
	return err
}

func formatChars(n int) string {
	return fmt.Sprintf("%s characters", humanize.Comma(int64(n)))
}

func failedNames(br epubmd.BatchResult) []string {
	names := make([]string, 0, len(br.Failed))
	for _, f := range br.Failed {
		names = append(names, filepath.Base(f.Path))
	}
	return names
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
