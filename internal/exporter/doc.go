// Package exporter serializes reconciliation reports.
//
// ExcelWriter renders a report.Report into an .xlsx workbook with two sheets,
// "Fund Type Summary" and "Outstanding Units". Styles are registered per
// workbook and picked from the row type, so concurrent writes share nothing.
//
// CSVWriter writes the flat fund summary as CSV for scripting.
//
// Example usage:
//
//	rep, err := report.NewEngine(report.DefaultOptions(), logger).Build(units, funds)
//	if err != nil {
//	    return err
//	}
//	err = exporter.NewExcelWriter(logger).WriteFile(exporter.OutputName("billing.xlsx"), rep)
package exporter
