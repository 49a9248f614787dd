package slogger

import (
	"bytes"
	"context"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, charmlog.ErrorLevel, Level(0))
	assert.Equal(t, charmlog.InfoLevel, Level(1))
	assert.Equal(t, charmlog.DebugLevel, Level(2))
	assert.Equal(t, charmlog.DebugLevel, Level(5))
}

func TestNew(t *testing.T) {
	t.Run("filters below verbosity", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(Config{Verbosity: 0, Output: &buf})

		logger.Info("hidden")
		logger.Error("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("debug at high verbosity", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(Config{Verbosity: 2, Output: &buf})

		logger.Debug("exec", "args", []string{"ls"})

		assert.Contains(t, buf.String(), "exec")
	})
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		logger := New(Config{})
		ctx := WithLogger(context.Background(), logger)

		assert.Same(t, logger, FromContext(ctx))
		assert.Same(t, logger, L(ctx))
	})

	t.Run("falls back to discarding logger", func(t *testing.T) {
		logger := FromContext(context.Background())

		require.NotNil(t, logger)
		assert.False(t, logger.Enabled(context.Background(), 8))
	})
}
