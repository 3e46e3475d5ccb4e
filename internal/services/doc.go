// Package services holds the application services behind the HTTP and CLI
// boundaries.
//
// ReconciliationService reads an uploaded billing workbook, runs the
// dataprocessing pipeline, lays out the report and renders it with the
// exporter. Every run is traced and recorded in the business metrics.
//
// HealthService answers the liveness, readiness and version endpoints.
// Readiness is the conjunction of registered probes.
package services
