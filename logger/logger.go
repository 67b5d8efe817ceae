// logger.go - Builds the process logger

package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing to stdout. JSON output is meant for
// production log shipping, text output for local development.
func New(level string, json bool) *logrus.Logger {
	return NewWithOutput(level, json, os.Stdout)
}

// NewWithOutput is New with an explicit writer.
func NewWithOutput(level string, json bool, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if json {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.WithField("level", level).Warn("unknown log level, falling back to info")
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
