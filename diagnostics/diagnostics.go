// Package diagnostics wires a *statechart.Hooks to log/slog, grounded
// on aretw0-trellis's internal/logging/logger.go (a configured
// slog.Logger writing to stderr, plus a NewNop variant for tests).
package diagnostics

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/gostatechart/statechart"
	"github.com/gostatechart/statechart/internal/ir"
)

// New builds a text-handler logger writing to stderr at level,
// matching logging.New's defaults.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewNop returns a logger that discards everything, for tests that
// want real Hooks wiring without log noise.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Hooks builds a *statechart.Hooks that logs every diagnostic through
// logger, tagged with chart and the engine's instance id. ReportError,
// transition errors and not-initiated calls log at slog.LevelError;
// unprocessed events and replies at slog.LevelWarn; ReportInfo and
// initiate/terminate at slog.LevelInfo; planned transitions and
// finished events at slog.LevelDebug.
func Hooks(logger *slog.Logger, chart string, id uuid.UUID) *statechart.Hooks {
	base := logger.With("chart", chart, "instance", id.String())
	return &statechart.Hooks{
		ReportError: func(msg func() string) {
			base.Error(msg())
		},
		ReportInfo: func(msg func() string) {
			base.Info(msg())
		},
		ReportUnprocessedEvent: func(e ir.Event) {
			base.Warn("unprocessed event", "event", string(e.Type))
		},
		ReportUnprocessedReply: func(r ir.Reply) {
			base.Warn("unprocessed reply", "reply", string(r.Type))
		},
		ReportTransitionError: func(node ir.NodeID) {
			base.Error("transition error", "node", string(node))
		},
		ReportNotInitiated: func(e ir.Event) {
			base.Error("process called before initiate", "event", string(e.Type))
		},
		ReportTransitions: func(nodes []ir.NodeID) {
			ids := make([]string, len(nodes))
			for i, n := range nodes {
				ids[i] = string(n)
			}
			base.Debug("transitions planned", "nodes", ids)
		},
		ReportEventFinished: func(e ir.Event) {
			base.Debug("event finished", "event", string(e.Type))
		},
		ReportInitiated: func() {
			base.Info("initiated")
		},
		ReportTerminated: func() {
			base.Info("terminated")
		},
	}
}
