// Package files provides the file system helpers used by the command line
// tools.
//
// Discovery finds billing workbooks in a directory, skipping spreadsheet lock
// files (~$name.xlsx) and previously generated reports:
//
//	discovery := files.NewDiscovery("", exporter.ReportSuffix)
//	workbooks, err := discovery.FindWorkbooks("exports/2026-09")
//
// WriteFileAtomic replaces a file through a rename so an interrupted run never
// leaves a truncated report behind.
package files
