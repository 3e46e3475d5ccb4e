package exporter

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fundrecon/internal/report"
	"fundrecon/internal/shared/testutil"
	"fundrecon/pkg/contracts/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleReport(t *testing.T) *report.Report {
	t.Helper()

	units := []domain.UnitAggregate{
		{FundType: "F1", UnitReference: "U1", Name: "Alice", TotalGrossDemanded: dec("150"), TotalSettled: dec("50")},
		{FundType: "F1", UnitReference: "U2", Name: "Bob", TotalGrossDemanded: dec("20.5"), TotalSettled: dec("0")},
		{FundType: "F2", UnitReference: "U9", Name: "Carol", TotalGrossDemanded: dec("1000"), TotalSettled: dec("1")},
	}
	funds := []domain.FundAggregate{
		{FundType: "F1", TotalOutstanding: dec("120.5"), UnitCount: 2},
		{FundType: "F2", TotalOutstanding: dec("999"), UnitCount: 1},
	}

	rep, err := report.NewEngine(report.DefaultOptions(), nil).Build(units, funds)
	require.NoError(t, err)
	return rep
}

func rawValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestExcelWriter_Sheets(t *testing.T) {
	payload, err := NewExcelWriter(nil).Bytes(sampleReport(t))
	require.NoError(t, err)

	f := testutil.OpenWorkbook(t, payload)
	assert.Equal(t, []string{SummarySheet, DetailSheet}, f.GetSheetList())
}

func TestExcelWriter_Summary(t *testing.T) {
	payload, err := NewExcelWriter(nil).Bytes(sampleReport(t))
	require.NoError(t, err)
	f := testutil.OpenWorkbook(t, payload)

	rows, err := f.GetRows(SummarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per fund, no total row")
	assert.Equal(t, report.SummaryColumns, rows[0])
	assert.Equal(t, []string{"F1", "120.5", "2"}, rows[1])
	assert.Equal(t, []string{"F2", "999", "1"}, rows[2])

	width, err := f.GetColWidth(SummarySheet, "C")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Number_of_Units_With_Outstanding")+2), width)
}

func TestExcelWriter_Detail(t *testing.T) {
	rep := sampleReport(t)
	payload, err := NewExcelWriter(nil).Bytes(rep)
	require.NoError(t, err)
	f := testutil.OpenWorkbook(t, payload)

	// F1: title, header, 2 data, subtotal; blank; F2: title, header, data, subtotal; grand total
	assert.Equal(t, "Fund Type: F1", rawValue(t, f, DetailSheet, "A1"))
	assert.Equal(t, "Fund type", rawValue(t, f, DetailSheet, "A2"))
	assert.Equal(t, "Outstanding", rawValue(t, f, DetailSheet, "F2"))
	assert.Equal(t, "U1", rawValue(t, f, DetailSheet, "B3"))
	assert.Equal(t, "100", rawValue(t, f, DetailSheet, "F3"))
	assert.Equal(t, "", rawValue(t, f, DetailSheet, "A5"))
	assert.Equal(t, "Total for F1", rawValue(t, f, DetailSheet, "C5"))
	assert.Equal(t, "120.5", rawValue(t, f, DetailSheet, "F5"))
	assert.Equal(t, "", rawValue(t, f, DetailSheet, "A6"))
	assert.Equal(t, "Fund Type: F2", rawValue(t, f, DetailSheet, "A7"))
	assert.Equal(t, "Total for F2", rawValue(t, f, DetailSheet, "C10"))
	assert.Equal(t, "Grand Total", rawValue(t, f, DetailSheet, "A11"), "no blank row before the grand total")
	assert.Equal(t, "1170.5", rawValue(t, f, DetailSheet, "D11"))
	assert.Equal(t, "1119.5", rawValue(t, f, DetailSheet, "F11"))

	merged, err := f.GetMergeCells(DetailSheet)
	require.NoError(t, err)
	var ranges []string
	for _, m := range merged {
		ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	assert.ElementsMatch(t, []string{"A1:F1", "A7:F7", "A11:C11"}, ranges)

	for i, want := range rep.Detail.Widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		got, err := f.GetColWidth(DetailSheet, name)
		require.NoError(t, err)
		assert.Equal(t, want, got, "column %s", name)
	}
}

func TestExcelWriter_RoleStyles(t *testing.T) {
	payload, err := NewExcelWriter(nil).Bytes(sampleReport(t))
	require.NoError(t, err)
	f := testutil.OpenWorkbook(t, payload)

	style := func(cell string) *excelize.Style {
		id, err := f.GetCellStyle(DetailSheet, cell)
		require.NoError(t, err)
		s, err := f.GetStyle(id)
		require.NoError(t, err)
		return s
	}

	title, header, data, subtotal, grand := style("A1"), style("A2"), style("A3"), style("C5"), style("A11")
	assert.True(t, title.Font.Bold)
	assert.True(t, header.Font.Bold)
	assert.True(t, subtotal.Font.Bold)
	assert.True(t, grand.Font.Bold)
	assert.NotEqual(t, title.Fill.Color, header.Fill.Color)
	assert.NotEqual(t, subtotal.Fill.Color, grand.Fill.Color)
	if data.Font != nil {
		assert.False(t, data.Font.Bold)
	}

	assert.Equal(t, numFmtAmount, style("D3").NumFmt)
	assert.Equal(t, numFmtAmount, style("F11").NumFmt)
}

func TestExcelWriter_EmptyReport(t *testing.T) {
	rep, err := report.NewEngine(report.DefaultOptions(), nil).Build(nil, nil)
	require.NoError(t, err)

	payload, err := NewExcelWriter(nil).Bytes(rep)
	require.NoError(t, err)
	f := testutil.OpenWorkbook(t, payload)

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Len(t, summary, 1)

	detail, err := f.GetRows(DetailSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, detail, 1)
	assert.Equal(t, []string{"Grand Total", "", "", "0", "0", "0"}, detail[0])
}

func TestExcelWriter_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), OutputName("billing.xlsx"))
	logger, logs := testutil.NewTestLogger(t)

	require.NoError(t, NewExcelWriter(logger).WriteFile(path, sampleReport(t)))
	assert.FileExists(t, path)
	assert.True(t, logs.ContainsMessage("report saved"))

	err := NewExcelWriter(nil).WriteFile(filepath.Join(t.TempDir(), "missing", "out.xlsx"), sampleReport(t))
	assert.Error(t, err)
}
