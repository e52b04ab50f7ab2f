// internal/logger/logger.go
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New crea el logger de la aplicación. format es "json" o "text"; un nivel
// desconocido pasa a info y se avisa una vez con el nuevo logger.
func New(w io.Writer, level, format string) *slog.Logger {
	lvl, ok := ParseLevel(level)

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(h)
	if !ok {
		l.Warn("unknown log level, using info", "level", level)
	}
	return l
}

// ParseLevel traduce debug, info, warn y error (sin distinguir mayúsculas) a
// niveles de slog.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
