package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundrecon/internal/config"
	apierrors "fundrecon/internal/errors"
	"fundrecon/internal/shared/testutil"
)

func TestInitializeOTel_Defaults(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)

	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	// Default config exports metrics only
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.True(t, logHandler.ContainsMessage("OpenTelemetry initialization complete"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_Configurations(t *testing.T) {
	tests := []struct {
		name    string
		config  *OTelConfig
		wantErr bool
	}{
		{
			name:   "all disabled",
			config: &OTelConfig{ServiceName: ServiceName, TraceExporter: "none", MetricExporter: "none"},
		},
		{
			name:   "stdout tracing",
			config: &OTelConfig{ServiceName: ServiceName, TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 1},
		},
		{
			name:    "unknown trace exporter",
			config:  &OTelConfig{ServiceName: ServiceName, TraceExporter: "jaeger"},
			wantErr: true,
		},
		{
			name:    "unknown metric exporter",
			config:  &OTelConfig{ServiceName: ServiceName, MetricExporter: "statsd"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			providers, err := InitializeOTel(tt.config, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   ServiceName,
		TraceExporter: "stdout",
		SampleRatio:   1,
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "reconcile")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))

	// Records on a live span without panicking
	RecordError(ctx, errors.New("boom"))
	RecordError(context.Background(), errors.New("ignored"))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 0.5}, "1.2.3")

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 0.5, cfg.SampleRatio)
}

func TestBusinessMetrics_PrometheusEndpoint(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordReportMetrics(ctx, metrics, ReportObservation{
		Source:           "cli",
		Variant:          config.VariantMinimal,
		Duration:         120 * time.Millisecond,
		RecordsRead:      10,
		RecordsEligible:  6,
		UnitsOutstanding: 3,
	})
	RecordReportMetrics(ctx, metrics, ReportObservation{
		Source: "http",
		Err:    apierrors.MissingSheetError("New Data"),
	})

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "reports_generated_total")
	assert.Contains(t, body, "report_failures_total")
	assert.Contains(t, body, `error_type="SCHEMA"`)
	assert.Contains(t, body, "billing_records_read_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestCreateBusinessMetrics_NilMeter(t *testing.T) {
	metrics, err := CreateBusinessMetrics(nil)
	require.NoError(t, err)

	// noop instruments accept recordings
	RecordReportMetrics(context.Background(), metrics, ReportObservation{Source: "cli"})
	RecordReportMetrics(context.Background(), nil, ReportObservation{})
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "INTERNAL", errorKind(apierrors.NewInternalAppError("x", nil)))
	assert.Equal(t, "CANCELED", errorKind(context.Canceled))
	assert.Equal(t, "*errors.errorString", errorKind(errors.New("plain")))
}
