package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelNone
)

var (
	debug   *log.Logger
	info    *log.Logger
	warning *log.Logger
	failure *log.Logger

	out io.Writer = os.Stderr
)

func init() {
	flags := log.Ldate | log.Ltime | log.LUTC
	debug = log.New(io.Discard, "D ", flags)
	info = log.New(io.Discard, "I ", flags)
	warning = log.New(io.Discard, "W ", flags)
	failure = log.New(io.Discard, "E ", flags)

	SetLevel(LevelWarning)
}

// ParseLevel maps a level name (debug, info, warning, error, none) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "none", "off":
		return LevelNone, nil
	}
	return LevelNone, fmt.Errorf("unknown log level %q", s)
}

// SetOutput redirects all enabled loggers to w.
// The current level is kept.
func SetOutput(w io.Writer) {
	out = w
	SetLevel(current)
}

var current = LevelWarning

func SetLevel(l Level) {
	current = l
	for i, lg := range []*log.Logger{debug, info, warning, failure} {
		if Level(i) >= l {
			lg.SetOutput(out)
		} else {
			lg.SetOutput(io.Discard)
		}
	}
}

func Debug(msg string, v ...any) {
	debug.Printf(msg, v...)
}

func Info(msg string, v ...any) {
	info.Printf(msg, v...)
}

func Warning(msg string, v ...any) {
	warning.Printf(msg, v...)
}

func Error(msg string, v ...any) {
	failure.Printf(msg, v...)
}
