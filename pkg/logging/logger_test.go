package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/mirrorsync/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logging.SetDefault(logger)

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message in output, got: %s", output)
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()

	ctx := logging.WithLogger(context.Background(), &logger)
	logging.FromContext(ctx).Info().Msg("from context")

	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("Expected context logger output, got: %s", buf.String())
	}
}

func TestContextLoggerFallback(t *testing.T) {
	// nil context and bare context both fall back to the default logger
	if logging.FromContext(nil) == nil {
		t.Error("Expected default logger for nil context")
	}
	if logging.FromContext(context.Background()) == nil {
		t.Error("Expected default logger for empty context")
	}
}

func TestWithKey(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel)

	ctx := logging.WithLogger(context.Background(), &logger)
	ctx = logging.WithKey(ctx, "PROJ-7")
	logging.Ctx(ctx).Info().Msg("building payload")

	if !strings.Contains(buf.String(), "PROJ-7") {
		t.Errorf("Expected key field in output, got: %s", buf.String())
	}
}

func TestNewLoggerFromConfig(t *testing.T) {
	cfg := &logging.Config{Level: "warn", Format: "json", Output: "discard"}
	logger := logging.NewLoggerFromConfig(cfg)

	if logger.GetLevel() != zerolog.WarnLevel {
		t.Errorf("Expected warn level, got %s", logger.GetLevel())
	}
}
