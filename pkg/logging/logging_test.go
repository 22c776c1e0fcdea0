package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		name     string
		options  Options
		expected zapcore.Level
	}{
		{"default_info", Options{}, zapcore.InfoLevel},
		{"explicit_warn", Options{Level: "WARN"}, zapcore.WarnLevel},
		{"verbose_overrides", Options{Level: "error", Verbose: true}, zapcore.DebugLevel},
		{"json", Options{JSON: true, Level: "debug"}, zapcore.DebugLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := New(tc.options)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.expected))
			if tc.expected > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tc.expected-1))
			}
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	logger := zap.NewExample()
	assert.Same(t, logger, OrNop(logger))
}
