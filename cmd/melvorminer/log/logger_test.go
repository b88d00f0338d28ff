package log

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG", false))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn", true))
	assert.Equal(t, slog.LevelError, parseLevel("error", false))
	assert.Equal(t, slog.LevelDebug, parseLevel("", true))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose", false))
}

func TestNewLoggerWritesToFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLoggerWithLevel("info", false, dir, "Rocky")
	require.NoError(t, err)
	logger.Info("hello miner")
	require.NoError(t, FlushAndClose())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "Miner-log-Rocky-")
}

func TestSessionFileName(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "Miner-log-2026-03-04-05-06-07.txt", sessionFileName("", at))
	assert.Equal(t, "Miner-log-Rocky-2026-03-04-05-06-07.txt", sessionFileName("Rocky", at))
}

func TestClockTimeKeepsOnlyTheTime(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	a := clockTime(nil, slog.Time(slog.TimeKey, at))
	assert.Equal(t, "05:06:07", a.Value.String())

	other := clockTime(nil, slog.String("ore", "Dragonite_Ore"))
	assert.Equal(t, "Dragonite_Ore", other.Value.String())
}
