// Package logging provides the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance.
var Log = logrus.New()

func init() {
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.InfoLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLevel sets the logging level from a string ("debug", "info", ...).
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}

// SetOutput sets the log output destination.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// SetJSONFormat switches the formatter to JSON, for log-aggregation deployments.
func SetJSONFormat() {
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithDevice returns a logger entry scoped to a device host.
//
// Never call this (or any With* helper) with a Credentials field — credentials
// must never be logged, even at Debug level.
func WithDevice(host string) *logrus.Entry {
	return Log.WithField("device", host)
}

// WithTask returns a logger entry scoped to a background task id.
func WithTask(taskID string) *logrus.Entry {
	return Log.WithField("task", taskID)
}

// WithOperation returns a logger entry scoped to a named operation (collector
// domain, sync kind, pipeline step kind, ...).
func WithOperation(operation string) *logrus.Entry {
	return Log.WithField("operation", operation)
}

// WithFields returns a logger entry carrying multiple fields at once.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
