package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var logFileHandler *os.File

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func FlushAndClose() error {
	if logFileHandler != nil {
		logFileHandler.Sync()
		return logFileHandler.Close()
	}

	return nil
}

// NewLoggerWithLevel logs to stdout and to a per session file under logDir.
// logLevel can be "debug", "info", "warn", or "error"
// If logLevel is empty or unknown, debug picks between debug and info
func NewLoggerWithLevel(logLevel string, debug bool, logDir, supervisor string) (*slog.Logger, error) {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	lfh, err := os.Create(filepath.Join(logDir, sessionFileName(supervisor, time.Now())))
	if err != nil {
		return nil, err
	}
	logFileHandler = lfh

	handler := slog.NewTextHandler(io.MultiWriter(logFileHandler, os.Stdout), &slog.HandlerOptions{
		Level:       parseLevel(logLevel, debug),
		ReplaceAttr: clockTime,
	})

	return slog.New(handler), nil
}

// One file per mining session, named after the character when there is one.
func sessionFileName(supervisor string, startedAt time.Time) string {
	stamp := startedAt.Format("2006-01-02-15-04-05")
	if supervisor == "" {
		return "Miner-log-" + stamp + ".txt"
	}

	return fmt.Sprintf("Miner-log-%s-%s.txt", supervisor, stamp)
}

// clockTime trims log timestamps to the time of day.
func clockTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
	}

	return a
}

func parseLevel(logLevel string, debug bool) slog.Level {
	if level, found := levels[strings.ToLower(logLevel)]; found {
		return level
	}
	if debug {
		return slog.LevelDebug
	}

	return slog.LevelInfo
}
