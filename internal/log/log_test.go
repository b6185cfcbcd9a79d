package log

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		l, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, Level(s), l)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger_FansOutAndFilters(t *testing.T) {
	var out, file bytes.Buffer
	logger := NewLogger(&out, &file, Warn)

	logger.Info("Round recorded")
	logger.Warn("Rejected event", ErrAttr(errors.New("unknown player")))

	for _, buf := range []*bytes.Buffer{&out, &file} {
		assert.NotContains(t, buf.String(), "Round recorded")
		assert.Contains(t, buf.String(), "Rejected event")
		assert.Contains(t, buf.String(), "unknown player")
	}
}

func TestToSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ToSlogLevel(Debug))
	assert.Equal(t, slog.LevelError, ToSlogLevel("bogus"))
}
