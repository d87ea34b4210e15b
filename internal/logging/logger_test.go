package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlmd/internal/logging"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{" DEBUG ", log.DebugLevel},
		{"Info", log.InfoLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.level, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(testCase.level)
			require.NotNil(t, logger)
			assert.Equal(t, testCase.want, logger.GetLevel())
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	logger.Debug("converted html", logging.FieldInputBytes, 42)

	assert.Contains(t, buf.String(), "htmlmd")
	assert.Contains(t, buf.String(), "converted html")
	assert.Contains(t, buf.String(), "input_bytes=42")
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

//nolint:paralleltest // Mutates the default logger.
func TestDefaultLogger(t *testing.T) {
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	require.NotNil(t, original)

	replacement := logging.New("error")
	logging.SetDefault(replacement)
	assert.Same(t, replacement, logging.Default())

	logging.SetLevel("debug")
	assert.Equal(t, log.DebugLevel, logging.Default().GetLevel())
}

func TestContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "debug")
	ctx := logging.WithLogger(context.Background(), logger)

	assert.Same(t, logger, logging.FromContext(ctx))
	assert.NotNil(t, logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is handled.
	assert.NotNil(t, logging.FromContext(nil))

	scoped, scopedLogger := logging.With(ctx, logging.FieldPath, "docs/index.html")
	assert.Same(t, scopedLogger, logging.FromContext(scoped))

	logging.FromContext(scoped).Debug("converted html")
	assert.Contains(t, buf.String(), "path=docs/index.html")

	// The parent context keeps the unscoped logger.
	assert.Same(t, logger, logging.FromContext(ctx))
}
