package dataprocessing

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "fundrecon/internal/errors"
)

// Table is the raw content of one worksheet. Header is the first row and
// Rows holds every row below it, so Rows[i] is worksheet row i+2.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string
}

// RowNumber returns the 1-based worksheet row of Rows[i]
func (t *Table) RowNumber(i int) int {
	return i + 2
}

// ReadTable reads one sheet of an .xlsx workbook. Cells are returned as
// stored, without number formats, so amounts keep their full precision.
func ReadTable(r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, apierrors.MissingSheetError(sheet).WithContext("sheets", f.GetSheetList())
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if len(rows) == 0 {
		return nil, apierrors.NewSchemaError(fmt.Sprintf("sheet %q has no header row", sheet), nil).
			WithContext("sheet", sheet)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	return &Table{
		Sheet:  sheet,
		Header: header,
		Rows:   rows[1:],
	}, nil
}

// ReadTableFile opens path and reads one sheet from it
func ReadTableFile(path, sheet string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	return ReadTable(file, sheet)
}
