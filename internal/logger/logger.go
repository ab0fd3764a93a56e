// Package logger builds the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const serviceName = "wallet-ledger"

// New returns a logger writing JSON in production and text elsewhere.
func New(level string, production bool) *logrus.Logger {
	return newWithOutput(os.Stdout, level, production)
}

func newWithOutput(out io.Writer, level string, production bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if production {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// For returns an entry tagged with the service and component name.
func For(l logrus.FieldLogger, component string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"service":   serviceName,
		"component": component,
	})
}

// Discard returns a logger that writes nowhere. Used by tests.
func Discard() *logrus.Logger {
	return newWithOutput(io.Discard, "panic", false)
}
