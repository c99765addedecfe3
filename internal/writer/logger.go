package writer

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// SetupLogger creates the run logger. Logs go to stderr only: stdout may be
// the dataset stream. Every run carries a run_id so interleaved logs from
// repeated invocations stay attributable.
func SetupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler).With("run_id", uuid.NewString())
}
