// Package logging configures the go-logging backend shared by every package.
//
// Packages declare their own logger with logging.MustGetLogger from
// gopkg.in/op/go-logging.v1; InitLogging decides where records go and which levels
// are shown.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"gopkg.in/op/go-logging.v1"
)

// Level aliases the go-logging level so callers need not import it.
type Level = logging.Level

// Levels exposed to callers.
const (
	LevelError   = logging.ERROR
	LevelWarning = logging.WARNING
	LevelInfo    = logging.INFO
	LevelDebug   = logging.DEBUG
)

func formatter(coloured bool) logging.Formatter {
	format := "%{time:15:04:05.000} %{level:7s}: %{module}: %{message}"
	if coloured {
		format = "%{color}" + format + "%{color:reset}"
	}
	return logging.MustStringFormatter(format)
}

// InitLogging routes log records to stderr at the level verbosity selects.
// Colour is used only when stderr is a terminal.
func InitLogging(verbosity int) {
	InitWriter(os.Stderr, LevelFor(verbosity), isatty.IsTerminal(os.Stderr.Fd()))
}

// InitWriter routes all log records at or above level to w.
func InitWriter(w io.Writer, level Level, coloured bool) {
	backend := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), formatter(coloured))
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}

// LevelFor maps a verbosity count onto a level: 0 shows warnings, 1 adds
// info and 2 or more adds debug. Negative values show only errors.
func LevelFor(verbosity int) Level {
	switch {
	case verbosity < 0:
		return LevelError
	case verbosity == 0:
		return LevelWarning
	case verbosity == 1:
		return LevelInfo
	default:
		return LevelDebug
	}
}
