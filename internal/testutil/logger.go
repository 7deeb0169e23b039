// Package testutil holds helpers shared by engine-level tests.
package testutil

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/lmittmann/tint"
)

// NewTestLogger returns a debug-level logger that writes through t.Log, so
// resolver and engine logs only show up for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(tint.NewHandler(tbWriter{t}, &tint.Options{
		Level:      slog.LevelDebug,
		NoColor:    true,
		TimeFormat: "15:04:05.000",
	}))
}

type tbWriter struct {
	t testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
