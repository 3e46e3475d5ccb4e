// Package http implements the HTTP handlers of the reconciliation web service.
// Handlers stay thin: they parse and validate the request, delegate to the
// services layer, and translate errors into RFC 7807 responses through
// errors.ErrorHandler.
//
// # Endpoints
//
//	GET  /                  upload form
//	POST /upload            multipart upload, answers with the report workbook
//	GET  /api/health        basic health
//	GET  /api/health/live   liveness with runtime stats
//	GET  /api/health/ready  readiness, 503 while a probe fails
//	GET  /api/version       build information
//
// # Upload
//
// The workbook is read from the "file" form field. An optional variant
// (minimal or extended) may be sent as a query parameter or form field. A
// successful upload returns the report as an attachment named
// <input>_analysis_report.xlsx. Missing files answer 400; any failure while
// reading or laying out the workbook answers 500 with the detail
// "Error processing file".
package http
