package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/bull/foundry-sharepoint/internal/config"
)

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func NewLogger(boot *config.Bootstrap, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(boot.LogLevel)}
	if strings.EqualFold(boot.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
