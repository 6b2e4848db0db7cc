// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/openpolicylab/debatesim/internal/config"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (*syncBuffer) Sync() error { return nil }

func testLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "debatesim-test",
	}
}

// TestInitialize_WritesThroughConfiguredLevel verifies level filtering and
// the service name tag.
func TestInitialize_WritesThroughConfiguredLevel(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(testLoggerConfig(), zapcore.Lock(buf))

	logger := GetLogger()
	require.NotNil(t, logger)

	logger.Debug("debug visible")
	logger.Info("info visible")

	output := buf.String()
	assert.Contains(t, output, "debug visible")
	assert.Contains(t, output, "info visible")
	assert.Contains(t, output, "debatesim-test")
}

// TestInitialize_BadLevelFallsBackToInfo checks an unparseable level does
// not panic and filters debug output.
func TestInitialize_BadLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	cfg := testLoggerConfig()
	cfg.Level = "shouting"

	buf := &syncBuffer{}
	Initialize(cfg, zapcore.Lock(buf))

	GetLogger().Debug("hidden")
	GetLogger().Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

// TestInitialize_Once verifies repeated initialization keeps the first
// configuration.
func TestInitialize_Once(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &syncBuffer{}
	second := &syncBuffer{}
	Initialize(testLoggerConfig(), zapcore.Lock(first))
	Initialize(testLoggerConfig(), zapcore.Lock(second))

	GetLogger().Info("routed once")
	assert.Contains(t, first.String(), "routed once")
	assert.Empty(t, strings.TrimSpace(second.String()))
}

// TestGetLogger_Fallback returns a usable logger before initialization.
func TestGetLogger_Fallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	assert.NotNil(t, GetLogger())
}
