// Package dataprocessing turns a "New Data" billing extract into the
// aggregates behind the reconciliation report.
//
// # Stages
//
//  1. ReadTable reads the raw sheet from an .xlsx workbook (excelize)
//  2. RecordLoader maps header columns and parses typed BillingRecords
//  3. EligibilityFilter keeps allowed unit types with both keys present
//  4. AggregateUnits sums amounts per (fund, unit, name)
//  5. FilterOutstanding keeps units with a positive outstanding amount
//  6. SummarizeFunds totals the remaining units per fund
//
// Pipeline chains stages 2 to 6 and reports Stats for each run.
//
// # Ordering
//
// Funds are emitted in the order they first appear among eligible records,
// never sorted. Units keep the first-seen order of their key inside a fund.
// Running the pipeline twice over the same table yields identical output.
//
// # Errors
//
// A missing sheet, a missing column or an unparseable amount is returned
// as an errors.AppError of type SCHEMA before any aggregation runs. An input
// with no eligible or no outstanding rows is not an error.
package dataprocessing
