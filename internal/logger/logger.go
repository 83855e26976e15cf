package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// New builds a logger writing to w. Without debug only warnings and
// errors are written.
func New(w io.Writer, debug, noColor bool) *log.Logger {
	l := log.NewWithOptions(w,
		log.Options{
			ReportCaller:    debug,
			ReportTimestamp: false,
			TimeFormat:      time.RFC3339,
			Prefix:          "PLVM",
			Level:           log.WarnLevel,
		})

	if debug {
		l.SetLevel(log.DebugLevel)
	}

	l.SetColorProfile(termenv.ANSI256)
	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}
	return l
}

// Init initializes the default logger on stderr
func Init(debug, noColor bool) {
	log.SetDefault(New(os.Stderr, debug, noColor))
}
