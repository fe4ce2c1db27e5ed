package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(level)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}

func TestNewLoggerFallsBackToInfoForUnknownLevel(t *testing.T) {
	logger, err := NewLogger("nonsense")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewMeterProviderExposesMeter(t *testing.T) {
	mp, err := NewMeterProvider("127.0.0.1:0")
	require.NoError(t, err)
	require.NotNil(t, mp.Meter("test"))
}
