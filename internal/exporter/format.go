package exporter

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ReportSuffix replaces the .xlsx extension of the input file name
const ReportSuffix = "_analysis_report.xlsx"

// OutputName derives the report file name from an uploaded file name.
// Directory components are dropped.
func OutputName(inputName string) string {
	base := filepath.Base(strings.ReplaceAll(inputName, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "report"
	}

	if ext := filepath.Ext(base); strings.EqualFold(ext, ".xlsx") {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ReportSuffix
}

// formatAmount formats an amount for CSV output with exactly 2 decimal places
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
