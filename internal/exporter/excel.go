package exporter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/report"
)

// Sheet names of the generated workbook
const (
	SummarySheet = "Fund Type Summary"
	DetailSheet  = "Outstanding Units"
)

// Built-in spreadsheet number formats
const (
	numFmtCount  = 3 // #,##0
	numFmtAmount = 4 // #,##0.00
)

// ExcelWriter renders a report.Report into an .xlsx workbook
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a writer. A nil logger uses slog.Default.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger.With(slog.String("component", "excel_writer"))}
}

// Write renders both sheets and writes the workbook to out
func (w *ExcelWriter) Write(out io.Writer, rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return apierrors.NewInternalAppError("failed to name summary sheet", err)
	}
	if _, err := f.NewSheet(DetailSheet); err != nil {
		return apierrors.NewInternalAppError("failed to create detail sheet", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return apierrors.NewInternalAppError("failed to create workbook styles", err)
	}

	sw := &sheetWriter{f: f, styles: styles}
	if err := sw.writeSummary(rep.Summary); err != nil {
		return apierrors.NewInternalAppError("failed to write summary sheet", err)
	}
	if err := sw.writeDetail(rep.Detail); err != nil {
		return apierrors.NewInternalAppError("failed to write detail sheet", err)
	}

	f.SetActiveSheet(0)

	if err := f.Write(out); err != nil {
		return apierrors.NewStorageError("failed to write workbook", err)
	}

	w.logger.Debug("workbook written",
		slog.Int("summary_rows", len(rep.Summary.Funds)),
		slog.Int("sections", len(rep.Detail.Sections)),
	)
	return nil
}

// Bytes renders the workbook into memory
func (w *ExcelWriter) Bytes(rep *report.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf, rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders the workbook to path, replacing any existing file
func (w *ExcelWriter) WriteFile(path string, rep *report.Report) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to create %s", path), err)
	}

	if err := w.Write(file, rep); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return apierrors.NewStorageError(fmt.Sprintf("failed to close %s", path), err)
	}

	w.logger.Info("report saved", slog.String("path", path))
	return nil
}

// cellStyle is the style pair for one row role
type cellStyle struct {
	text   int
	amount int
	count  int
}

// styleSet holds style IDs registered in one workbook
type styleSet struct {
	title    cellStyle
	header   cellStyle
	data     cellStyle
	subtotal cellStyle
	grand    cellStyle
}

func newStyleSet(f *excelize.File) (*styleSet, error) {
	thin := func(sides ...string) []excelize.Border {
		borders := make([]excelize.Border, len(sides))
		for i, s := range sides {
			borders[i] = excelize.Border{Type: s, Color: "#000000", Style: 1}
		}
		return borders
	}
	grid := thin("left", "right", "top", "bottom")
	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	var errs []error
	add := func(s *excelize.Style) int {
		id, err := f.NewStyle(s)
		if err != nil {
			errs = append(errs, err)
		}
		return id
	}
	role := func(base excelize.Style) cellStyle {
		amount, count := base, base
		amount.NumFmt = numFmtAmount
		count.NumFmt = numFmtCount
		return cellStyle{text: add(&base), amount: add(&amount), count: add(&count)}
	}

	set := &styleSet{
		title: role(excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 12, Color: "#FFFFFF"},
			Fill:      fill("#1F4E78"),
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		}),
		header: role(excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      fill("#D9E1F2"),
			Border:    grid,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		}),
		data: role(excelize.Style{
			Border: grid,
		}),
		subtotal: role(excelize.Style{
			Font:   &excelize.Font{Bold: true},
			Fill:   fill("#F2F2F2"),
			Border: grid,
		}),
		grand: role(excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 12},
			Fill: fill("#FFE699"),
			Border: []excelize.Border{
				{Type: "left", Color: "#000000", Style: 1},
				{Type: "right", Color: "#000000", Style: 1},
				{Type: "top", Color: "#000000", Style: 6},
				{Type: "bottom", Color: "#000000", Style: 6},
			},
		}),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set, nil
}

// sheetWriter places model rows into worksheet cells
type sheetWriter struct {
	f      *excelize.File
	styles *styleSet
}

func (w *sheetWriter) writeSummary(table report.FundSummaryTable) error {
	for i, row := range table.Rows() {
		style := w.styles.data
		if _, ok := row.(report.HeaderRow); ok {
			style = w.styles.header
		}
		if err := w.writeRow(SummarySheet, i+1, row.Cells(), style); err != nil {
			return err
		}
	}

	if err := w.f.SetPanes(SummarySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return w.setWidths(SummarySheet, table.Widths)
}

func (w *sheetWriter) writeDetail(doc report.ReportDocument) error {
	for i, row := range doc.Rows() {
		var style cellStyle
		switch row.(type) {
		case report.TitleRow:
			style = w.styles.title
		case report.HeaderRow:
			style = w.styles.header
		case report.DataRow:
			style = w.styles.data
		case report.SubtotalRow:
			style = w.styles.subtotal
		case report.GrandTotalRow:
			style = w.styles.grand
		case report.SeparatorRow:
			continue
		default:
			return fmt.Errorf("unsupported row type %T", row)
		}

		if err := w.writeRow(DetailSheet, i+1, row.Cells(), style); err != nil {
			return err
		}
	}
	return w.setWidths(DetailSheet, doc.Widths)
}

func (w *sheetWriter) writeRow(sheet string, rowNum int, cells []report.Cell, style cellStyle) error {
	col := 1
	for _, c := range cells {
		span := c.Span
		if span < 1 {
			span = 1
		}

		start, err := excelize.CoordinatesToCellName(col, rowNum)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(col+span-1, rowNum)
		if err != nil {
			return err
		}

		styleID := style.text
		switch c.Kind {
		case report.CellText:
			err = w.f.SetCellStr(sheet, start, c.Text)
		case report.CellAmount:
			styleID = style.amount
			err = w.f.SetCellFloat(sheet, start, c.Amount.InexactFloat64(), -1, 64)
		case report.CellCount:
			styleID = style.count
			err = w.f.SetCellValue(sheet, start, c.Count)
		}
		if err != nil {
			return err
		}

		if span > 1 {
			if err := w.f.MergeCell(sheet, start, end); err != nil {
				return err
			}
		}
		if err := w.f.SetCellStyle(sheet, start, end, styleID); err != nil {
			return err
		}

		col += span
	}
	return nil
}

func (w *sheetWriter) setWidths(sheet string, widths []float64) error {
	for i, width := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}
