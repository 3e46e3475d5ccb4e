package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fundrecon/internal/config"
	"fundrecon/internal/exporter"
	"fundrecon/internal/infrastructure"
	"fundrecon/internal/report"
	"fundrecon/internal/services"
	"fundrecon/internal/validation"
	"fundrecon/pkg/contracts"
)

// Summary output formats
const (
	FormatTable = "table"
	FormatCSV   = "csv"
)

type rootOptions struct {
	configPath string
	logLevel   string
	stdout     io.Writer
	stderr     io.Writer
}

type requestOptions struct {
	input     string
	variant   string
	unitTypes []string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "reconcile",
		Short:         "Reconcile billing workbooks into outstanding-unit reports",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to the YAML config file (default is $RECON_CONFIG_FILE or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(newReportCmd(opts), newSummaryCmd(opts), newBatchCmd(opts))
	return cmd
}

func addRequestFlags(cmd *cobra.Command, req *requestOptions) {
	cmd.Flags().StringVarP(&req.input, "input", "i", "", "Billing workbook to read (.xlsx)")
	cmd.MarkFlagRequired("input")
	addSelectionFlags(cmd, req)
}

func addSelectionFlags(cmd *cobra.Command, req *requestOptions) {
	cmd.Flags().StringVar(&req.variant, "variant", "", "Unit-type variant: minimal or extended")
	cmd.Flags().StringSliceVar(&req.unitTypes, "unit-types", nil, "Explicit unit types, overrides --variant")
}

func (r requestOptions) request() services.ReportRequest {
	return services.ReportRequest{
		FileName:  r.input,
		Source:    services.SourceCLI,
		Variant:   strings.ToLower(r.variant),
		UnitTypes: r.unitTypes,
	}
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		req    requestOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the reconciliation workbook",
		Long: "Reads the \"New Data\" sheet of the input workbook and writes " +
			"<input>" + exporter.ReportSuffix + " next to it, or to --output.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, logger, closer, err := opts.service()
			if err != nil {
				return err
			}
			defer closer.Close()

			validator := validation.NewFileValidator(logger)
			if err := validator.ValidateWorkbookFile(req.input); err != nil {
				return err
			}
			if output != "" {
				if err := validator.ValidateOutputPath(output); err != nil {
					return err
				}
			}

			ctx := infrastructure.EnsureTraceID(cmd.Context())
			result, err := svc.GenerateFile(ctx, req.input, output, req.request())
			if err != nil {
				logger.ErrorContext(ctx, "report failed", slog.String("error", err.Error()))
				return err
			}

			fmt.Fprintf(opts.stdout, "Report written to %s (%d units outstanding across %d funds)\n",
				result.FileName, result.Stats.OutstandingUnits, result.Stats.Funds)
			return nil
		},
	}

	addRequestFlags(cmd, &req)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path for the report workbook")
	return cmd
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var (
		req    requestOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the fund type summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != FormatTable && format != FormatCSV {
				return fmt.Errorf("unknown format %q: must be %s or %s", format, FormatTable, FormatCSV)
			}

			svc, _, closer, err := opts.service()
			if err != nil {
				return err
			}
			defer closer.Close()

			file, err := os.Open(req.input)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", req.input, err)
			}
			defer file.Close()

			analysis, err := svc.Analyze(infrastructure.EnsureTraceID(cmd.Context()), file, req.request())
			if err != nil {
				return err
			}

			if format == FormatCSV {
				return exporter.NewCSVWriter(false).WriteSummary(opts.stdout, analysis.Report.Summary)
			}
			return writeTable(opts.stdout, analysis.Report.Summary.Rows())
		},
	}

	addRequestFlags(cmd, &req)
	cmd.Flags().StringVarP(&format, "format", "f", FormatTable, "Output format: table or csv")
	return cmd
}

// service builds the reconciliation service with logs on stderr
func (o *rootOptions) service() (*services.ReconciliationService, *slog.Logger, io.Closer, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging, o.stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc := services.NewReconciliationService(cfg.Report, services.Dependencies{
		Logger: infrastructure.WithComponent(logger, "cli"),
	})
	return svc, logger, closer, nil
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath, true)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// writeTable prints rows as aligned text columns
func writeTable(out io.Writer, rows []report.Row) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		cells := row.Cells()
		texts := make([]string, len(cells))
		for i, c := range cells {
			texts[i] = c.Display()
		}
		fmt.Fprintln(tw, strings.Join(texts, "\t"))
	}
	return tw.Flush()
}
