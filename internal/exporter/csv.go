package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"fundrecon/internal/report"
)

// CSVWriter writes flat tables as CSV
type CSVWriter struct {
	bom bool
}

// NewCSVWriter creates a CSV writer. With bom set, output starts with a
// UTF-8 byte order mark so Excel detects the encoding.
func NewCSVWriter(bom bool) *CSVWriter {
	return &CSVWriter{bom: bom}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// WriteCSV writes headers and records to out
func (w *CSVWriter) WriteCSV(out io.Writer, options WriteOptions) error {
	if w.bom {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSummary writes the fund summary table as CSV
func (w *CSVWriter) WriteSummary(out io.Writer, table report.FundSummaryTable) error {
	return w.WriteCSV(out, WriteOptions{
		Headers: table.Columns,
		Records: SummaryRecords(table),
	})
}

// SummaryRecords converts the fund summary to CSV records
func SummaryRecords(table report.FundSummaryTable) [][]string {
	records := make([][]string, 0, len(table.Funds))
	for _, row := range table.Funds {
		records = append(records, []string{
			row.Fund.FundType,
			formatAmount(row.Fund.TotalOutstanding),
			formatInt(row.Fund.UnitCount),
		})
	}
	return records
}
