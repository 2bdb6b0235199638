package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// teeHandler fans every log record out to multiple handlers so a run can log
// to the operator console and its own log file at once.
type teeHandler struct {
	handlers []slog.Handler
}

// Enabled reports whether any wrapped handler accepts the level.
func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes the record to every wrapped handler that accepts its level.
func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			errs = append(errs, handler.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

// WithAttrs returns a tee over the wrapped handlers with the attrs applied.
func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &teeHandler{handlers: next}
}

// WithGroup returns a tee over the wrapped handlers with the group applied.
func (h *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &teeHandler{handlers: next}
}

// openRunLog tees the importer's logger into an append-only per-run log file
// next to the session report, giving each run a durable audit trail. The
// returned func restores the logger and closes the file; log-file failures
// are logged and leave the original logger in place.
func (imp *Importer) openRunLog() func() {
	if imp.reportDir == "" {
		return func() {}
	}

	if err := os.MkdirAll(imp.reportDir, 0o750); err != nil {
		imp.logger.Error("failed to create report directory", "dir", imp.reportDir, "error", err)
		return func() {}
	}

	path := filepath.Join(imp.reportDir, fmt.Sprintf("import-%s.log", imp.runID))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		imp.logger.Error("failed to open run log", "path", path, "error", err)
		return func() {}
	}

	prev := imp.logger
	imp.logger = slog.New(&teeHandler{handlers: []slog.Handler{
		prev.Handler(),
		slog.NewJSONHandler(file, nil),
	}})

	return func() {
		imp.logger = prev
		if err := file.Close(); err != nil {
			prev.Error("failed to close run log", "path", path, "error", err)
		}
	}
}

// writeReport persists the session summary as a JSON file for operator
// inspection. Report failures are logged, never fatal: the import's outcome
// matters more than the paperwork.
func (imp *Importer) writeReport(session *SessionResult) {
	if imp.reportDir == "" {
		return
	}

	if err := os.MkdirAll(imp.reportDir, 0o750); err != nil {
		imp.logger.Error("failed to create report directory", "dir", imp.reportDir, "error", err)
		return
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		imp.logger.Error("failed to encode session report", "error", err)
		return
	}

	path := filepath.Join(imp.reportDir, fmt.Sprintf("import-%s.json", session.RunID))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		imp.logger.Error("failed to write session report", "path", path, "error", err)
		return
	}

	imp.logger.Info("wrote session report", "path", path)
}
