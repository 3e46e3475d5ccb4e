package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("derived loggers share records and keep attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		child := logger.With(slog.String("component", "loader"))
		child.WithGroup("stats").Info("loaded", slog.Int("rows", 4))
		logger.Info("root")

		rec, ok := handler.FindRecord("loaded")
		require.True(t, ok)
		assert.Equal(t, "loader", rec.Attrs["component"])
		assert.Equal(t, int64(4), rec.Attrs["stats.rows"])

		root, ok := handler.FindRecord("root")
		require.True(t, ok)
		assert.NotContains(t, root.Attrs, "component")
		assert.Equal(t, 2, handler.Count())
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		assert.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		logger.Warn("warning message", slog.Int("retry", 3))

		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})
}

func TestNewBillingWorkbook(t *testing.T) {
	payload := NewBillingWorkbook(t,
		BillingRow{UnitType: "Commercial", UnitReference: "U1", Contact: "Acme", FundType: "F1", Name: "Alice", GrossDemanded: "100", Settled: "40"},
		BillingRow{UnitType: "Commercial", FundType: "F1", Name: "Nobody", GrossDemanded: "5"},
	)

	f := OpenWorkbook(t, payload)
	assert.Equal(t, []string{"New Data"}, f.GetSheetList())

	rows, err := f.GetRows("New Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, BillingHeader, rows[0])
	assert.Equal(t, "Alice", rows[1][4])
	assert.Equal(t, "", rows[2][1])

	path := WriteWorkbook(t, "billing.xlsx", payload)
	assert.FileExists(t, path)
}
