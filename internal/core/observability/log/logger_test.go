package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(Config{Level: LevelInfo, Format: "xml"})
	assert.Error(t, err)

	l, err := New(Config{Level: LevelWarn, Format: "console"})
	require.NoError(t, err)
	assert.False(t, l.Enabled(LevelInfo))
	assert.True(t, l.Enabled(LevelError))
}

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.With(String("agent", "brian")).Named("npc").Info("tick",
		Int("n", 3),
		Bool("ok", true),
		Duration("dt", 16*time.Millisecond),
		Uint64("hash", 42),
		Error(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "npc", entry.LoggerName)
	ctx := entry.ContextMap()
	assert.Equal(t, "brian", ctx["agent"])
	assert.EqualValues(t, 3, ctx["n"])
	assert.Equal(t, true, ctx["ok"])
	assert.Equal(t, "boom", ctx["error"])
	assert.True(t, l.Enabled(LevelDebug))
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored")
	assert.False(t, l.Enabled(LevelInfo))
}
