package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	apierrors "fundrecon/internal/errors"
	"fundrecon/pkg/contracts/domain"
)

// Input column headers of the "New Data" extract
const (
	ColumnUnitType      = "Unit type"
	ColumnUnitReference = "Unit Reference"
	ColumnFundType      = "Fund type"
	ColumnName          = "Name"
	ColumnGrossDemanded = "Gross Demanded"
	ColumnSettled       = "Settled"

	// ColumnUnitName is the label spreadsheet tools give the second Name
	// column, which holds the unit name. The first one is a contact name.
	ColumnUnitName = "Name.1"
)

// columnIndex maps the fields of a BillingRecord to table columns
type columnIndex struct {
	unitType      int
	unitReference int
	fundType      int
	name          int
	grossDemanded int
	settled       int
}

// RecordLoader turns the rows of a Table into typed billing records
type RecordLoader struct {
	logger *slog.Logger
}

// NewRecordLoader creates a loader. A nil logger uses slog.Default.
func NewRecordLoader(logger *slog.Logger) *RecordLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordLoader{logger: logger.With(slog.String("component", "record_loader"))}
}

// Load validates the header and parses every non-blank row. Any missing
// column or unparseable amount fails the whole load.
func (l *RecordLoader) Load(table *Table) ([]domain.BillingRecord, error) {
	cols, err := mapColumns(table)
	if err != nil {
		return nil, err
	}

	records := make([]domain.BillingRecord, 0, len(table.Rows))
	blank := 0
	for i, row := range table.Rows {
		if isBlankRow(row) {
			blank++
			continue
		}

		rowNum := table.RowNumber(i)
		gross, err := parseAmount(cell(row, cols.grossDemanded))
		if err != nil {
			return nil, apierrors.InvalidCellError(table.Sheet, ColumnGrossDemanded, rowNum, cell(row, cols.grossDemanded), err)
		}
		settled, err := parseAmount(cell(row, cols.settled))
		if err != nil {
			return nil, apierrors.InvalidCellError(table.Sheet, ColumnSettled, rowNum, cell(row, cols.settled), err)
		}

		records = append(records, domain.BillingRecord{
			Row:           rowNum,
			UnitType:      cell(row, cols.unitType),
			UnitReference: cell(row, cols.unitReference),
			FundType:      cell(row, cols.fundType),
			Name:          cell(row, cols.name),
			GrossDemanded: gross,
			Settled:       settled,
		})
	}

	l.logger.Debug("billing records loaded",
		slog.String("sheet", table.Sheet),
		slog.Int("records", len(records)),
		slog.Int("blank_rows", blank),
	)

	return records, nil
}

// mapColumns locates the required columns. The unit name comes from
// Name.1 when present, otherwise from the second Name column.
func mapColumns(table *Table) (columnIndex, error) {
	positions := make(map[string][]int, len(table.Header))
	for i, h := range table.Header {
		positions[h] = append(positions[h], i)
	}

	first := func(name string) (int, error) {
		if p, ok := positions[name]; ok {
			return p[0], nil
		}
		return -1, apierrors.MissingColumnError(table.Sheet, name)
	}

	var (
		cols columnIndex
		err  error
	)
	if cols.unitType, err = first(ColumnUnitType); err != nil {
		return cols, err
	}
	if cols.unitReference, err = first(ColumnUnitReference); err != nil {
		return cols, err
	}
	if cols.fundType, err = first(ColumnFundType); err != nil {
		return cols, err
	}
	if cols.grossDemanded, err = first(ColumnGrossDemanded); err != nil {
		return cols, err
	}
	if cols.settled, err = first(ColumnSettled); err != nil {
		return cols, err
	}

	switch {
	case len(positions[ColumnUnitName]) > 0:
		cols.name = positions[ColumnUnitName][0]
	case len(positions[ColumnName]) > 1:
		cols.name = positions[ColumnName][1]
	default:
		return cols, apierrors.MissingColumnError(table.Sheet, ColumnUnitName)
	}

	return cols, nil
}

// parseAmount parses a monetary cell. Blank cells count as zero and
// thousands separators are ignored.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %w", err)
	}
	return d, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
