// Package scanlog builds the two-channel logger from spec.md section 6:
// an informational channel ("Scanning <path>", phase timing checkpoints)
// and a debug channel (per-section skip reasons), fanned out to
// independent handlers so each channel's verbosity and destination can be
// configured separately.
//
// Grounded on the teacher's pkg/utils/errors.go error-wrapping style for
// the package's own doc conventions; the fanout mechanism itself reuses
// samber/slog-multi, a dependency declared in the teacher's go.mod but
// never wired into teacher code, adopted here for its intended purpose.
package scanlog

import (
	"io"
	"log/slog"

	slogmulti "github.com/samber/slog-multi"
)

// New builds a *slog.Logger whose records are routed by level: anything
// at or above Info goes to infoWriter, and everything (including Debug)
// also goes to debugWriter. Passing the same writer for both writes
// every Info-and-above record to it twice.
func New(infoWriter, debugWriter io.Writer) *slog.Logger {
	infoHandler := slog.NewTextHandler(infoWriter, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewTextHandler(debugWriter, &slog.HandlerOptions{Level: slog.LevelDebug})

	fanout := slogmulti.Fanout(infoHandler, debugHandler)
	return slog.New(fanout)
}
