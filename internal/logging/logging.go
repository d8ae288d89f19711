// Package logging builds the logrus logger shared by the CLI and the search.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options holds logging configuration.
type Options struct {
	Level   string // trace, debug, info, warn, error
	JSON    bool
	NoColor bool
	Output  io.Writer // defaults to os.Stderr
}

// DefaultOptions keeps the terminal quiet unless something goes wrong.
func DefaultOptions() Options {
	return Options{Level: "warn"}
}

// New returns a configured logger. Unknown levels fall back to warn.
func New(opts Options) *logrus.Logger {
	l := logrus.New()
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	l.SetLevel(level)

	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   opts.NoColor,
		})
	}
	return l
}
