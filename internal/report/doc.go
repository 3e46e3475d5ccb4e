// Package report lays out reconciliation aggregates as two declarative
// views: a flat FundSummaryTable and a sectioned ReportDocument.
//
// Every row is a tagged variant (TitleRow, HeaderRow, DataRow, SubtotalRow,
// GrandTotalRow, SeparatorRow) carrying only the cells meaningful to its
// role. Writers switch on the row type to pick a style; the role never
// changes row content.
//
// Column widths are computed from the display text of the cells written to
// each column, so they depend only on the rows of the view being sized.
package report
