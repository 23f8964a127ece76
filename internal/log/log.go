// Package log holds the process-wide structured logger.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Setup reconfigures the shared logger. level is one of debug, info, warn,
// error; format is text or json.
func Setup(level, format string, w io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	l := newLogger(w)
	l.SetLevel(lvl)
	switch format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
	default:
		return fmt.Errorf("log: unknown format %q", format)
	}
	logger = l
	return nil
}

// Get returns the shared logger instance.
func Get() *logrus.Logger {
	return logger
}

// Project returns an entry tagged with a project ID.
func Project(id string) *logrus.Entry {
	return logger.WithField("project", id)
}
