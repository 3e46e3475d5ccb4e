package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fundrecon/internal/config"
	"fundrecon/internal/dataprocessing"
	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/exporter"
	"fundrecon/internal/files"
	"fundrecon/internal/infrastructure"
	"fundrecon/internal/report"
)

// Report sources recorded in metrics
const (
	SourceHTTP = "http"
	SourceCLI  = "cli"
)

// ReportRequest describes one reconciliation run
type ReportRequest struct {
	// FileName is the name of the uploaded or local input file
	FileName string
	// Source is SourceHTTP or SourceCLI
	Source string
	// Variant overrides the configured variant when set
	Variant string
	// UnitTypes overrides the variant allow-set when set
	UnitTypes []string
}

// Analysis is the laid-out report before serialization
type Analysis struct {
	Report    *report.Report
	Stats     dataprocessing.Stats
	Variant   string
	UnitTypes []string
}

// ReportResult is a generated workbook
type ReportResult struct {
	Analysis
	FileName string
	Content  []byte
}

// Dependencies are the collaborators of ReconciliationService. Nil fields
// fall back to process defaults.
type Dependencies struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *infrastructure.BusinessMetrics
}

// ReconciliationService runs the reconciliation core for one input at a time.
// It holds only configuration and is safe for concurrent use.
type ReconciliationService struct {
	cfg     config.ReportConfig
	engine  *report.Engine
	writer  *exporter.ExcelWriter
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewReconciliationService creates the service
func NewReconciliationService(cfg config.ReportConfig, deps Dependencies) *ReconciliationService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer("fundrecon/services")
	}
	if cfg.InputSheet == "" {
		cfg.InputSheet = config.DefaultInputSheet
	}

	return &ReconciliationService{
		cfg: cfg,
		engine: report.NewEngine(report.Options{
			ColumnPadding:  cfg.ColumnPadding,
			MinColumnWidth: cfg.MinColumnWidth,
			MaxColumnWidth: cfg.MaxColumnWidth,
		}, logger),
		writer:  exporter.NewExcelWriter(logger),
		logger:  logger.With(slog.String("component", "reconciliation_service")),
		tracer:  tracer,
		metrics: deps.Metrics,
	}
}

// Variants lists the accepted report variants
func Variants() []string {
	return []string{config.VariantMinimal, config.VariantExtended}
}

// Ready reports whether the service can accept work
func (s *ReconciliationService) Ready() error {
	if len(s.cfg.AllowedUnitTypes()) == 0 {
		return ErrNoUnitTypes
	}
	return nil
}

// Analyze reads the input workbook and lays out both report views
func (s *ReconciliationService) Analyze(ctx context.Context, input io.Reader, req ReportRequest) (*Analysis, error) {
	start := time.Now()
	analysis, err := s.analyze(ctx, input, req)
	s.observe(ctx, req, analysis, time.Since(start), err)
	return analysis, err
}

// Generate produces the report workbook for one input
func (s *ReconciliationService) Generate(ctx context.Context, input io.Reader, req ReportRequest) (*ReportResult, error) {
	start := time.Now()
	result, err := s.generate(ctx, input, req)

	var analysis *Analysis
	if result != nil {
		analysis = &result.Analysis
	}
	s.observe(ctx, req, analysis, time.Since(start), err)
	return result, err
}

// GenerateFile reads inputPath and writes the workbook to outputPath. An
// empty outputPath is derived from the input name next to the input file.
func (s *ReconciliationService) GenerateFile(ctx context.Context, inputPath, outputPath string, req ReportRequest) (*ReportResult, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to open %s", inputPath), err)
	}
	defer file.Close()

	if req.FileName == "" {
		req.FileName = inputPath
	}
	result, err := s.Generate(ctx, file, req)
	if err != nil {
		return nil, err
	}

	if outputPath == "" {
		outputPath = filepath.Join(filepath.Dir(inputPath), result.FileName)
	}
	if err := files.WriteFileAtomic(outputPath, result.Content, 0o644); err != nil {
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to write %s", outputPath), err)
	}
	result.FileName = outputPath

	s.logger.InfoContext(ctx, "report written", slog.String("path", outputPath))
	return result, nil
}

func (s *ReconciliationService) generate(ctx context.Context, input io.Reader, req ReportRequest) (*ReportResult, error) {
	analysis, err := s.analyze(ctx, input, req)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "report.write")
	defer span.End()

	content, err := s.writer.Bytes(analysis.Report)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("bytes", len(content)))

	return &ReportResult{
		Analysis: *analysis,
		FileName: exporter.OutputName(req.FileName),
		Content:  content,
	}, nil
}

func (s *ReconciliationService) analyze(ctx context.Context, input io.Reader, req ReportRequest) (*Analysis, error) {
	if input == nil {
		return nil, apierrors.NewAppValidationError(ErrNilInput.Error())
	}

	variant, unitTypes, err := s.resolveAllowSet(req)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "report.analyze", trace.WithAttributes(
		attribute.String("variant", variant),
		attribute.StringSlice("unit_types", unitTypes),
		attribute.String("file_name", req.FileName),
	))
	defer span.End()

	fail := func(err error) (*Analysis, error) {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	table, err := dataprocessing.ReadTable(input, s.cfg.InputSheet)
	if err != nil {
		return fail(err)
	}

	pipeline := dataprocessing.NewPipeline(dataprocessing.PipelineConfig{
		AllowedUnitTypes: unitTypes,
		Logger:           s.logger,
		Tracer:           s.tracer,
	})
	result, err := pipeline.Run(ctx, table)
	if err != nil {
		return fail(err)
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	rep, err := s.engine.Build(result.Units, result.Funds)
	if err != nil {
		return fail(err)
	}

	return &Analysis{
		Report:    rep,
		Stats:     result.Stats,
		Variant:   variant,
		UnitTypes: unitTypes,
	}, nil
}

// resolveAllowSet applies request overrides on top of the configuration.
// A requested variant replaces any configured explicit list.
func (s *ReconciliationService) resolveAllowSet(req ReportRequest) (string, []string, error) {
	rc := s.cfg
	if req.Variant != "" {
		v := strings.ToLower(req.Variant)
		if v != config.VariantMinimal && v != config.VariantExtended {
			return "", nil, apierrors.NewAppValidationError(fmt.Sprintf("%v: %q", ErrUnknownVariant, req.Variant)).
				WithContext("allowed", Variants())
		}
		rc.Variant = v
		rc.UnitTypes = nil
	}
	if len(req.UnitTypes) > 0 {
		rc.UnitTypes = req.UnitTypes
	}

	types := rc.AllowedUnitTypes()
	if len(types) == 0 {
		return "", nil, apierrors.NewAppValidationError(ErrNoUnitTypes.Error())
	}
	return rc.Variant, types, nil
}

func (s *ReconciliationService) observe(ctx context.Context, req ReportRequest, analysis *Analysis, d time.Duration, err error) {
	obs := infrastructure.ReportObservation{
		Source:   req.Source,
		Variant:  req.Variant,
		Duration: d,
		Err:      err,
	}
	if obs.Variant == "" {
		obs.Variant = s.cfg.Variant
	}
	if analysis != nil {
		obs.Variant = analysis.Variant
		obs.RecordsRead = analysis.Stats.RowsRead
		obs.RecordsEligible = analysis.Stats.Eligible
		obs.UnitsOutstanding = analysis.Stats.OutstandingUnits
	}
	infrastructure.RecordReportMetrics(ctx, s.metrics, obs)

	attrs := []any{
		slog.String("source", req.Source),
		slog.String("file_name", req.FileName),
		slog.String("variant", obs.Variant),
		slog.Duration("duration", d),
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "report generation failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	s.logger.InfoContext(ctx, "report generated", append(attrs, slog.Any("stats", analysis.Stats))...)
}
