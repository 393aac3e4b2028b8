// Package testhelpers collects small fixtures shared by tests across the module.
package testhelpers

import (
	"io"
	"log/slog"

	"github.com/summitpulse/ventiscore/internal/logging"
)

// NewLogger creates a new logger with the given log sink such as a bytes.Buffer.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}
