package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundrecon/internal/services"
	"fundrecon/internal/shared/testutil"
)

func setupHealthRouter(t *testing.T, probes map[string]services.ReadinessProbe) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc := services.NewHealthService("1.0.0", "2026-01-01", "abc123", logger)
	for name, probe := range probes {
		svc.RegisterProbe(name, probe)
	}

	r := chi.NewRouter()
	r.Mount("/api", NewHealthHandler(svc, logger).Routes())
	return r
}

func getJSON(t *testing.T, router http.Handler, path string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthHandler_Endpoints(t *testing.T) {
	router := setupHealthRouter(t, nil)

	code, body := getJSON(t, router, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.0.0", body["version"])

	code, body = getJSON(t, router, "/api/health/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", body["status"])
	assert.Contains(t, body, "runtime")

	code, body = getJSON(t, router, "/api/version")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "abc123", body["git_commit"])
}

func TestHealthHandler_Readiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		router := setupHealthRouter(t, map[string]services.ReadinessProbe{
			"reconciliation": func(ctx context.Context) error { return nil },
		})

		code, body := getJSON(t, router, "/api/health/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("not ready", func(t *testing.T) {
		router := setupHealthRouter(t, map[string]services.ReadinessProbe{
			"reconciliation": func(ctx context.Context) error { return errors.New("no unit types") },
		})

		code, body := getJSON(t, router, "/api/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "not_ready", body["status"])
	})
}
