// Package testutil holds helpers shared by tests.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug-level logger attached to tb. Records are
// printed through tb.Log without timestamps, one call per record.
func NewTestLogger(tb testing.TB) *slog.Logger {
	tb.Helper()
	h := slog.NewTextHandler(tbWriter{tb: tb}, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: dropTime,
	})
	return slog.New(h)
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
