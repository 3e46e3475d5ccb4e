package http

import (
	"context"
	"io"

	"fundrecon/internal/services"
)

// ReportServiceInterface defines the report generation used by the upload handler
type ReportServiceInterface interface {
	Generate(ctx context.Context, input io.Reader, req services.ReportRequest) (*services.ReportResult, error)
}
