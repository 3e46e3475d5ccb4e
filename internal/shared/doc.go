// Package shared holds helpers used across the fundrecon packages that do not
// belong to any single layer.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on structured logs
//   - workbook fixtures (NewBillingWorkbook, NewWorkbook) that build .xlsx
//     payloads in memory with excelize
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    payload := testutil.NewBillingWorkbook(t, testutil.BillingRow{
//	        UnitType: "Commercial", UnitReference: "U1", FundType: "F1",
//	        Name: "Alice", GrossDemanded: "100", Settled: "40",
//	    })
//	    ...
//	}
//
// Nothing in this package may import business packages.
package shared
