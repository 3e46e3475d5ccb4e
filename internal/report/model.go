package report

import (
	"github.com/shopspring/decimal"

	"fundrecon/pkg/contracts/domain"
)

// Display columns of the "Outstanding Units" sheet
var DetailColumns = []string{
	"Fund type", "Unit Reference", "Name", "Total_Gross_Demanded", "Total_Settled", "Outstanding",
}

// Display columns of the "Fund Type Summary" sheet
var SummaryColumns = []string{
	"Fund type", "Total_Outstanding", "Number_of_Units_With_Outstanding",
}

// Role decides how a row is rendered. It never changes what the row holds.
type Role int

const (
	RoleTitle Role = iota
	RoleHeader
	RoleData
	RoleSubtotal
	RoleGrandTotal
	// RoleSeparator marks the unstyled blank row after a fund section
	RoleSeparator
)

func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleHeader:
		return "header"
	case RoleData:
		return "data"
	case RoleSubtotal:
		return "subtotal"
	case RoleGrandTotal:
		return "grand_total"
	case RoleSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// CellKind tells the writer how to store a cell value
type CellKind int

const (
	CellBlank CellKind = iota
	CellText
	CellAmount
	CellCount
)

// Cell is one value placed in a row. Span is the number of columns it
// covers; spanning cells are merged by the writer.
type Cell struct {
	Kind   CellKind
	Text   string
	Amount decimal.Decimal
	Count  int
	Span   int
}

func textCell(s string) Cell {
	if s == "" {
		return Cell{Kind: CellBlank, Span: 1}
	}
	return Cell{Kind: CellText, Text: s, Span: 1}
}

func amountCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellAmount, Amount: d, Span: 1}
}

func countCell(n int) Cell {
	return Cell{Kind: CellCount, Count: n, Span: 1}
}

// Display returns the text a spreadsheet shows for the cell
func (c Cell) Display() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellAmount:
		return FormatAmount(c.Amount)
	case CellCount:
		return FormatCount(c.Count)
	default:
		return ""
	}
}

// Row is one of TitleRow, HeaderRow, DataRow, SubtotalRow, GrandTotalRow
// or SeparatorRow
type Row interface {
	Role() Role
	Cells() []Cell
}

// TitleRow opens a fund section
type TitleRow struct {
	Label   string
	Columns int
}

func (TitleRow) Role() Role { return RoleTitle }

func (r TitleRow) Cells() []Cell {
	return []Cell{{Kind: CellText, Text: r.Label, Span: r.Columns}}
}

// HeaderRow names the columns
type HeaderRow struct {
	Columns []string
}

func (HeaderRow) Role() Role { return RoleHeader }

func (r HeaderRow) Cells() []Cell {
	cells := make([]Cell, len(r.Columns))
	for i, c := range r.Columns {
		cells[i] = textCell(c)
	}
	return cells
}

// DataRow shows one outstanding unit
type DataRow struct {
	Unit domain.UnitAggregate
}

func (DataRow) Role() Role { return RoleData }

func (r DataRow) Cells() []Cell {
	return []Cell{
		textCell(r.Unit.FundType),
		textCell(r.Unit.UnitReference),
		textCell(r.Unit.Name),
		amountCell(r.Unit.TotalGrossDemanded),
		amountCell(r.Unit.TotalSettled),
		amountCell(r.Unit.Outstanding()),
	}
}

// SubtotalRow closes a fund section. The label sits in the Name column.
type SubtotalRow struct {
	FundType string
	Label    string
	Totals   domain.Totals
}

func (SubtotalRow) Role() Role { return RoleSubtotal }

func (r SubtotalRow) Cells() []Cell {
	return []Cell{
		textCell(""),
		textCell(""),
		textCell(r.Label),
		amountCell(r.Totals.GrossDemanded),
		amountCell(r.Totals.Settled),
		amountCell(r.Totals.Outstanding),
	}
}

// GrandTotalRow sums every retained unit. The label spans the three text columns.
type GrandTotalRow struct {
	Label  string
	Totals domain.Totals
}

func (GrandTotalRow) Role() Role { return RoleGrandTotal }

func (r GrandTotalRow) Cells() []Cell {
	return []Cell{
		{Kind: CellText, Text: r.Label, Span: 3},
		amountCell(r.Totals.GrossDemanded),
		amountCell(r.Totals.Settled),
		amountCell(r.Totals.Outstanding),
	}
}

// SeparatorRow is the blank row between sections
type SeparatorRow struct{}

func (SeparatorRow) Role() Role { return RoleSeparator }

func (SeparatorRow) Cells() []Cell { return nil }

// ReportSection is the block of rows for one fund
type ReportSection struct {
	FundType string
	Title    TitleRow
	Header   HeaderRow
	Data     []DataRow
	Subtotal SubtotalRow
}

// Rows returns the section rows in render order, separator excluded
func (s ReportSection) Rows() []Row {
	rows := make([]Row, 0, len(s.Data)+3)
	rows = append(rows, s.Title, s.Header)
	for _, d := range s.Data {
		rows = append(rows, d)
	}
	return append(rows, s.Subtotal)
}

// ReportDocument is the hierarchical "Outstanding Units" view
type ReportDocument struct {
	Columns    []string
	Sections   []ReportSection
	GrandTotal GrandTotalRow
	Widths     []float64
}

// Rows flattens the document: sections with a separator between each pair,
// then the grand total directly after the last subtotal
func (d ReportDocument) Rows() []Row {
	var rows []Row
	for i, s := range d.Sections {
		if i > 0 {
			rows = append(rows, SeparatorRow{})
		}
		rows = append(rows, s.Rows()...)
	}
	return append(rows, d.GrandTotal)
}

// FundSummaryRow is one fund in the flat view
type FundSummaryRow struct {
	Fund domain.FundAggregate
}

func (FundSummaryRow) Role() Role { return RoleData }

func (r FundSummaryRow) Cells() []Cell {
	return []Cell{
		textCell(r.Fund.FundType),
		amountCell(r.Fund.TotalOutstanding),
		countCell(r.Fund.UnitCount),
	}
}

// FundSummaryTable is the flat "Fund Type Summary" view. It has no total row.
type FundSummaryTable struct {
	Columns []string
	Funds   []FundSummaryRow
	Widths  []float64
}

// Rows returns the header followed by one row per fund
func (t FundSummaryTable) Rows() []Row {
	rows := make([]Row, 0, len(t.Funds)+1)
	rows = append(rows, HeaderRow{Columns: t.Columns})
	for _, f := range t.Funds {
		rows = append(rows, f)
	}
	return rows
}

// Report bundles both views of one reconciliation
type Report struct {
	Summary FundSummaryTable
	Detail  ReportDocument
}
