package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logLevelEnv overrides the level chosen by --verbose, mainly for the MCP
// server where the client owns the command line.
const logLevelEnv = "PLANVEC_LOG_LEVEL"

// newLogger creates a timestamped logger writing to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// resolveLevel picks the log level from --verbose and PLANVEC_LOG_LEVEL.
// An unparseable environment value is ignored.
func resolveLevel(verbose bool) log.Level {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if v := strings.TrimSpace(os.Getenv(logLevelEnv)); v != "" {
		if l, err := log.ParseLevel(v); err == nil {
			level = l
		}
	}
	return level
}

// progress logs the elapsed time of one operation.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the time since newProgress, e.g.
// "Extracted 3 bordes_externos, 12 sublotes (412ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
