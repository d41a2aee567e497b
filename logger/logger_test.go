package logger_test

import (
	"context"
	"testing"

	"civicecho-be/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContextRoundTrip(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "warn", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)

	ctx := logger.WithContext(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx, nil))
}

func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	assert.Equal(t, nop, logger.FromContext(context.Background(), nop))
	assert.NotNil(t, logger.FromContext(context.Background(), nil))
}

func TestEnrichedLoggerIsUsable(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}})
	require.NoError(t, err)

	enriched := l.With(logger.String("request_id", "abc"))
	enriched.Debug("debug entry", logger.Int("n", 1))
	enriched.Warn("warn entry", logger.Bool("ok", true))
}
