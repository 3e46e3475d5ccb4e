package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// BillingHeader is the header row of a "New Data" accounting extract. The
// first Name column holds the tenant contact; the second one is the unit name.
var BillingHeader = []string{
	"Unit type", "Unit Reference", "Name", "Fund type", "Name", "Gross Demanded", "Settled",
}

// BillingRow is one data row in BillingHeader order. Empty strings leave the
// cell blank.
type BillingRow struct {
	UnitType      string
	UnitReference string
	Contact       string
	FundType      string
	Name          string
	GrossDemanded string
	Settled       string
}

func (r BillingRow) cells() []string {
	return []string{r.UnitType, r.UnitReference, r.Contact, r.FundType, r.Name, r.GrossDemanded, r.Settled}
}

// WorkbookSheet describes one sheet of a fixture workbook
type WorkbookSheet struct {
	Name string
	Rows [][]string
}

// BillingSheet builds the "New Data" sheet from typed rows
func BillingSheet(rows ...BillingRow) WorkbookSheet {
	data := make([][]string, 0, len(rows)+1)
	data = append(data, BillingHeader)
	for _, r := range rows {
		data = append(data, r.cells())
	}
	return WorkbookSheet{Name: "New Data", Rows: data}
}

// NewWorkbook renders sheets into an .xlsx payload. Cells that parse as
// numbers are written as numbers so the reader sees what accounting exports produce.
func NewWorkbook(t *testing.T, sheets ...WorkbookSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, cell, cellValue(value)); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, cell, err)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// NewBillingWorkbook is NewWorkbook with a single "New Data" sheet
func NewBillingWorkbook(t *testing.T, rows ...BillingRow) []byte {
	t.Helper()
	return NewWorkbook(t, BillingSheet(rows...))
}

// WriteWorkbook stores a payload under t.TempDir and returns its path
func WriteWorkbook(t *testing.T, name string, payload []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// OpenWorkbook parses an .xlsx payload for assertions
func OpenWorkbook(t *testing.T, payload []byte) *excelize.File {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cellValue(s string) interface{} {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
