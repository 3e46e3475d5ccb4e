package dataprocessing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fundrecon/pkg/contracts/domain"
)

// Stats counts what each stage kept and dropped
type Stats struct {
	RowsRead           int `json:"rows_read"`
	Eligible           int `json:"eligible"`
	DroppedUnitType    int `json:"dropped_unit_type"`
	DroppedMissingKeys int `json:"dropped_missing_keys"`
	UnitAggregates     int `json:"unit_aggregates"`
	OutstandingUnits   int `json:"outstanding_units"`
	Funds              int `json:"funds"`
}

// LogValue implements slog.LogValuer
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rows_read", s.RowsRead),
		slog.Int("eligible", s.Eligible),
		slog.Int("dropped_unit_type", s.DroppedUnitType),
		slog.Int("dropped_missing_keys", s.DroppedMissingKeys),
		slog.Int("unit_aggregates", s.UnitAggregates),
		slog.Int("outstanding_units", s.OutstandingUnits),
		slog.Int("funds", s.Funds),
	)
}

// EligibilityFilter keeps records of an allowed unit type that carry both
// a unit reference and a fund type
type EligibilityFilter struct {
	allowed map[string]struct{}
}

// NewEligibilityFilter creates a filter for the given unit types. Matching is exact.
func NewEligibilityFilter(unitTypes []string) *EligibilityFilter {
	allowed := make(map[string]struct{}, len(unitTypes))
	for _, t := range unitTypes {
		allowed[t] = struct{}{}
	}
	return &EligibilityFilter{allowed: allowed}
}

// Filter returns the eligible records in input order. Records with missing
// keys are dropped without error and only counted.
func (f *EligibilityFilter) Filter(records []domain.BillingRecord) (eligible []domain.BillingRecord, droppedType, droppedKeys int) {
	eligible = make([]domain.BillingRecord, 0, len(records))
	for _, r := range records {
		if _, ok := f.allowed[r.UnitType]; !ok {
			droppedType++
			continue
		}
		if r.UnitReference == "" || r.FundType == "" {
			droppedKeys++
			continue
		}
		eligible = append(eligible, r)
	}
	return eligible, droppedType, droppedKeys
}

// AggregateUnits sums records per (fund, unit, name). Funds appear in the
// order they are first seen, and within a fund units keep the order their
// key is first seen.
func AggregateUnits(records []domain.BillingRecord) []domain.UnitAggregate {
	type slot struct{ fund, unit int }

	var (
		funds     [][]domain.UnitAggregate
		fundIndex = make(map[string]int)
		unitIndex = make(map[domain.UnitKey]slot)
		total     int
	)

	for _, r := range records {
		key := domain.UnitKey{FundType: r.FundType, UnitReference: r.UnitReference, Name: r.Name}

		s, ok := unitIndex[key]
		if !ok {
			fi, seen := fundIndex[r.FundType]
			if !seen {
				fi = len(funds)
				fundIndex[r.FundType] = fi
				funds = append(funds, nil)
			}
			funds[fi] = append(funds[fi], domain.UnitAggregate{
				FundType:      r.FundType,
				UnitReference: r.UnitReference,
				Name:          r.Name,
			})
			s = slot{fund: fi, unit: len(funds[fi]) - 1}
			unitIndex[key] = s
			total++
		}

		agg := &funds[s.fund][s.unit]
		agg.TotalGrossDemanded = agg.TotalGrossDemanded.Add(r.GrossDemanded)
		agg.TotalSettled = agg.TotalSettled.Add(r.Settled)
	}

	out := make([]domain.UnitAggregate, 0, total)
	for _, units := range funds {
		out = append(out, units...)
	}
	return out
}

// FilterOutstanding keeps units whose outstanding amount is strictly positive
func FilterOutstanding(units []domain.UnitAggregate) []domain.UnitAggregate {
	out := make([]domain.UnitAggregate, 0, len(units))
	for _, u := range units {
		if u.Outstanding().IsPositive() {
			out = append(out, u)
		}
	}
	return out
}

// SummarizeFunds builds one FundAggregate per fund in first-seen order.
// UnitCount counts distinct unit references.
func SummarizeFunds(units []domain.UnitAggregate) []domain.FundAggregate {
	var (
		funds     []domain.FundAggregate
		fundIndex = make(map[string]int)
		seenUnits = make(map[[2]string]struct{})
	)

	for _, u := range units {
		fi, ok := fundIndex[u.FundType]
		if !ok {
			fi = len(funds)
			fundIndex[u.FundType] = fi
			funds = append(funds, domain.FundAggregate{FundType: u.FundType})
		}

		funds[fi].TotalOutstanding = funds[fi].TotalOutstanding.Add(u.Outstanding())

		unitKey := [2]string{u.FundType, u.UnitReference}
		if _, seen := seenUnits[unitKey]; !seen {
			seenUnits[unitKey] = struct{}{}
			funds[fi].UnitCount++
		}
	}

	if funds == nil {
		funds = []domain.FundAggregate{}
	}
	return funds
}

// Result is the output of one pipeline run
type Result struct {
	Units []domain.UnitAggregate
	Funds []domain.FundAggregate
	Stats Stats
}

// PipelineConfig configures a Pipeline
type PipelineConfig struct {
	AllowedUnitTypes []string
	Logger           *slog.Logger
	Tracer           trace.Tracer
}

// Pipeline runs the aggregation stages over one input table. It holds no
// per-run state and is safe for concurrent use.
type Pipeline struct {
	loader *RecordLoader
	filter *EligibilityFilter
	logger *slog.Logger
	tracer trace.Tracer
}

// NewPipeline creates a pipeline
func NewPipeline(cfg PipelineConfig) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer("fundrecon/dataprocessing")
	}

	return &Pipeline{
		loader: NewRecordLoader(logger),
		filter: NewEligibilityFilter(cfg.AllowedUnitTypes),
		logger: logger.With(slog.String("component", "pipeline")),
		tracer: tracer,
	}
}

// Run loads, filters, aggregates and summarizes the table. The context is
// checked between stages; a cancelled run returns no partial result.
func (p *Pipeline) Run(ctx context.Context, table *Table) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("sheet", table.Sheet)),
	)
	defer span.End()

	var stats Stats

	records, err := p.load(ctx, table)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	stats.RowsRead = len(records)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, filterSpan := p.tracer.Start(ctx, "pipeline.filter")
	eligible, droppedType, droppedKeys := p.filter.Filter(records)
	filterSpan.SetAttributes(attribute.Int("eligible", len(eligible)))
	filterSpan.End()
	stats.Eligible = len(eligible)
	stats.DroppedUnitType = droppedType
	stats.DroppedMissingKeys = droppedKeys

	if droppedKeys > 0 {
		p.logger.DebugContext(ctx, "records without unit reference or fund type dropped",
			slog.Int("count", droppedKeys))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, aggSpan := p.tracer.Start(ctx, "pipeline.aggregate")
	units := AggregateUnits(eligible)
	stats.UnitAggregates = len(units)
	outstanding := FilterOutstanding(units)
	stats.OutstandingUnits = len(outstanding)
	aggSpan.SetAttributes(
		attribute.Int("unit_aggregates", len(units)),
		attribute.Int("outstanding_units", len(outstanding)),
	)
	aggSpan.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	funds := SummarizeFunds(outstanding)
	stats.Funds = len(funds)

	span.SetAttributes(
		attribute.Int("rows_read", stats.RowsRead),
		attribute.Int("funds", stats.Funds),
	)

	if len(outstanding) == 0 {
		p.logger.InfoContext(ctx, "no units with outstanding balance", slog.Any("stats", stats))
	} else {
		p.logger.InfoContext(ctx, "pipeline completed", slog.Any("stats", stats))
	}

	return &Result{Units: outstanding, Funds: funds, Stats: stats}, nil
}

func (p *Pipeline) load(ctx context.Context, table *Table) ([]domain.BillingRecord, error) {
	_, span := p.tracer.Start(ctx, "pipeline.load")
	defer span.End()

	records, err := p.loader.Load(table)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
