package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/slittycode/model-benchmark/internal/redact"
)

var (
	logger      *slog.Logger
	redactLines bool
)

func init() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Init sets up logging with the given level and optional file writer.
func Init(level string, fileWriter io.Writer) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var w io.Writer = os.Stderr
	if fileWriter != nil {
		w = io.MultiWriter(os.Stderr, fileWriter)
	}
	logger = slog.New(slog.NewTextHandler(w, opts))
}

// SetRedact toggles secret scrubbing of log output. On by default via
// config; tests that assert raw messages can switch it off.
func SetRedact(on bool) { redactLines = on }

func scrub(args []any) []any {
	if !redactLines {
		return args
	}
	out := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			out[i] = redact.Secrets(s)
		} else {
			out[i] = a
		}
	}
	return out
}

func Debug(msg string, args ...any) { logger.Debug(msg, scrub(args)...) }
func Info(msg string, args ...any)  { logger.Info(msg, scrub(args)...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, scrub(args)...) }
func Error(msg string, args ...any) { logger.Error(msg, scrub(args)...) }
