package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"fundrecon/internal/shared/testutil"
)

func TestHealthService(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "2026-01-01", "abc123", logger)
	ctx := context.Background()

	t.Run("health", func(t *testing.T) {
		status := hs.HealthCheck(ctx)
		assert.Equal(t, "ok", status.Status)
		assert.Equal(t, "1.2.3", status.Version)
	})

	t.Run("liveness", func(t *testing.T) {
		status := hs.LivenessCheck(ctx)
		assert.Equal(t, "alive", status.Status)
		assert.Contains(t, status.Runtime, "goroutines")
	})

	t.Run("readiness without probes", func(t *testing.T) {
		assert.Equal(t, "ready", hs.ReadinessCheck(ctx).Status)
	})

	t.Run("readiness with failing probe", func(t *testing.T) {
		hs.RegisterProbe("report", func(context.Context) error { return nil })
		hs.RegisterProbe("disk", func(context.Context) error { return errors.New("read-only") })

		status := hs.ReadinessCheck(ctx)
		assert.Equal(t, "not_ready", status.Status)
		assert.Equal(t, "ready", status.Services["report"].Status)
		assert.Equal(t, "read-only", status.Services["disk"].Message)
		assert.True(t, logs.ContainsMessage("readiness probe failed"))
	})

	t.Run("version", func(t *testing.T) {
		v := hs.Version()
		assert.Equal(t, "1.2.3", v["version"])
		assert.Equal(t, "abc123", v["git_commit"])
		assert.Equal(t, "2026-01-01", v["build_time"])
	})
}
