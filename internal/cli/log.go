// Package cli implements the reftree command-line interface.
//
// Every command reads member descriptors from one source (a JSON file, a page
// carrying referral grid markup, or a MongoDB collection), builds the grid
// and hands it to an output: files for layout, render and visualize, the
// terminal for view, HTTP for serve.
//
// Diagnostics go through a charmbracelet/log logger on stderr, raised to
// debug level by --verbose. Command results are printed separately so the
// summary stays readable when logging is noisy.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat prints wall time with centiseconds, e.g. "14:32:01.45".
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// progress measures one command step for the log.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time and any extra key/value pairs.
func (p *progress) done(msg string, keyvals ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append([]any{"elapsed", elapsed}, keyvals...)...)
}
