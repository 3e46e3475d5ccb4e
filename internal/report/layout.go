package report

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	apierrors "fundrecon/internal/errors"
	"fundrecon/pkg/contracts/domain"
)

// Labels written by the layout engine
const (
	TitlePrefix     = "Fund Type: "
	SubtotalPrefix  = "Total for "
	GrandTotalLabel = "Grand Total"
)

// Options bounds the computed column widths, in spreadsheet character units
type Options struct {
	ColumnPadding  float64
	MinColumnWidth float64
	MaxColumnWidth float64
}

// DefaultOptions returns the widths used when no configuration is given
func DefaultOptions() Options {
	return Options{ColumnPadding: 2, MinColumnWidth: 10, MaxColumnWidth: 60}
}

// Engine lays out aggregates into the two report views. It keeps no state
// between calls.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine creates a layout engine
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxColumnWidth < opts.MinColumnWidth {
		opts.MaxColumnWidth = opts.MinColumnWidth
	}
	return &Engine{
		opts:   opts,
		logger: logger.With(slog.String("component", "layout_engine")),
	}
}

// Build lays out the outstanding units and their fund summaries. Units must
// already be filtered; sections follow the first-seen order of their fund.
func (e *Engine) Build(units []domain.UnitAggregate, funds []domain.FundAggregate) (*Report, error) {
	detail, err := e.BuildDocument(units)
	if err != nil {
		return nil, err
	}

	summary := e.BuildSummary(funds)
	if err := checkSummary(summary, detail); err != nil {
		return nil, err
	}

	e.logger.Debug("report laid out",
		slog.Int("sections", len(detail.Sections)),
		slog.Int("summary_rows", len(summary.Funds)),
		slog.String("outstanding", detail.GrandTotal.Totals.Outstanding.String()),
	)

	return &Report{Summary: summary, Detail: detail}, nil
}

// BuildDocument produces the sectioned "Outstanding Units" view
func (e *Engine) BuildDocument(units []domain.UnitAggregate) (ReportDocument, error) {
	var (
		sections []ReportSection
		index    = make(map[string]int)
		grand    domain.Totals
	)

	for _, u := range units {
		i, ok := index[u.FundType]
		if !ok {
			i = len(sections)
			index[u.FundType] = i
			sections = append(sections, ReportSection{
				FundType: u.FundType,
				Title:    TitleRow{Label: TitlePrefix + u.FundType, Columns: len(DetailColumns)},
				Header:   HeaderRow{Columns: DetailColumns},
				Subtotal: SubtotalRow{FundType: u.FundType, Label: SubtotalPrefix + u.FundType},
			})
		}

		s := &sections[i]
		s.Data = append(s.Data, DataRow{Unit: u})
		s.Subtotal.Totals = s.Subtotal.Totals.Add(u)
		grand = grand.Add(u)
	}

	var fromSubtotals domain.Totals
	for _, s := range sections {
		fromSubtotals = fromSubtotals.Plus(s.Subtotal.Totals)
	}
	if !grand.Equal(fromSubtotals) {
		return ReportDocument{}, apierrors.NewInternalAppError(
			fmt.Sprintf("grand total %s does not match subtotals %s", grand.Outstanding, fromSubtotals.Outstanding), nil)
	}

	doc := ReportDocument{
		Columns:    DetailColumns,
		Sections:   sections,
		GrandTotal: GrandTotalRow{Label: GrandTotalLabel, Totals: grand},
	}
	doc.Widths = ColumnWidths(doc.Rows(), len(DetailColumns), e.opts)
	return doc, nil
}

// BuildSummary produces the flat "Fund Type Summary" view
func (e *Engine) BuildSummary(funds []domain.FundAggregate) FundSummaryTable {
	table := FundSummaryTable{
		Columns: SummaryColumns,
		Funds:   make([]FundSummaryRow, len(funds)),
	}
	for i, f := range funds {
		table.Funds[i] = FundSummaryRow{Fund: f}
	}
	table.Widths = ColumnWidths(table.Rows(), len(SummaryColumns), e.opts)
	return table
}

// ColumnWidths sizes each column to the longest text written to it. Cells
// spanning several columns are ignored.
func ColumnWidths(rows []Row, columns int, opts Options) []float64 {
	longest := make([]int, columns)
	for _, row := range rows {
		col := 0
		for _, c := range row.Cells() {
			span := c.Span
			if span < 1 {
				span = 1
			}
			if span == 1 && col < columns {
				if n := utf8.RuneCountInString(c.Display()); n > longest[col] {
					longest[col] = n
				}
			}
			col += span
		}
	}

	widths := make([]float64, columns)
	for i, n := range longest {
		w := float64(n) + opts.ColumnPadding
		if w < opts.MinColumnWidth {
			w = opts.MinColumnWidth
		}
		if opts.MaxColumnWidth > 0 && w > opts.MaxColumnWidth {
			w = opts.MaxColumnWidth
		}
		widths[i] = w
	}
	return widths
}

// checkSummary verifies that both views agree on every fund
func checkSummary(summary FundSummaryTable, detail ReportDocument) error {
	if len(summary.Funds) != len(detail.Sections) {
		return apierrors.NewInternalAppError(
			fmt.Sprintf("summary has %d funds but report has %d sections", len(summary.Funds), len(detail.Sections)), nil)
	}
	for i, row := range summary.Funds {
		s := detail.Sections[i]
		if row.Fund.FundType != s.FundType || !row.Fund.TotalOutstanding.Equal(s.Subtotal.Totals.Outstanding) {
			return apierrors.NewInternalAppError(
				fmt.Sprintf("fund %q summary does not match its section", row.Fund.FundType), nil).
				WithContext("position", i)
		}
	}
	return nil
}
