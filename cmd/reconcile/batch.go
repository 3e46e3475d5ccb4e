package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fundrecon/internal/exporter"
	"fundrecon/internal/files"
	"fundrecon/internal/infrastructure"
	"fundrecon/internal/validation"
)

type batchResult struct {
	input  string
	output string
	units  int
	err    error
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		req       requestOptions
		dir       string
		outputDir string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Write a report for every workbook in a directory",
		Long: "Finds the .xlsx workbooks directly inside --dir, skipping lock files and " +
			"earlier *" + exporter.ReportSuffix + " outputs, and writes one report per workbook. " +
			"A failing workbook does not stop the others.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1, got %d", workers)
			}

			svc, logger, closer, err := opts.service()
			if err != nil {
				return err
			}
			defer closer.Close()

			workbooks, err := files.NewDiscovery("", exporter.ReportSuffix).FindWorkbooks(dir)
			if err != nil {
				return err
			}
			if len(workbooks) == 0 {
				fmt.Fprintf(opts.stdout, "No workbooks found in %s\n", dir)
				return nil
			}

			if outputDir != "" {
				if err := validation.NewFileValidator(logger).ValidateOutputDirectory(outputDir); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			results := make([]batchResult, len(workbooks))

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(workers)
			for i, wb := range workbooks {
				output := ""
				if outputDir != "" {
					output = filepath.Join(outputDir, exporter.OutputName(wb.Name))
				}

				g.Go(func() error {
					r := req
					r.input = wb.Path
					res := batchResult{input: wb.Path}

					// Each workbook gets its own trace ID in the logs
					result, err := svc.GenerateFile(infrastructure.EnsureTraceID(gctx), wb.Path, output, r.request())
					if err != nil {
						res.err = err
					} else {
						res.output = result.FileName
						res.units = result.Stats.OutstandingUnits
					}
					results[i] = res
					return nil
				})
			}
			g.Wait()

			failed := 0
			for _, res := range results {
				if res.err != nil {
					failed++
					fmt.Fprintf(opts.stdout, "FAILED  %s: %v\n", res.input, res.err)
					continue
				}
				fmt.Fprintf(opts.stdout, "OK      %s -> %s (%d units outstanding)\n", res.input, res.output, res.units)
			}

			logger.InfoContext(ctx, "batch completed",
				slog.Int("workbooks", len(results)),
				slog.Int("failed", failed),
				slog.Int("workers", workers))

			if failed > 0 {
				return fmt.Errorf("%d of %d workbooks failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory holding the billing workbooks")
	cmd.MarkFlagRequired("dir")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the reports (default: next to each input)")
	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Workbooks processed concurrently")
	addSelectionFlags(cmd, &req)
	return cmd
}
