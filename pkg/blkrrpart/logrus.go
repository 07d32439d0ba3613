package blkrrpart

import "github.com/sirupsen/logrus"

// logrusLogger adapts a *logrus.Entry to the Logger interface, following
// pkg/elog/logger.go's CLI.Debugf/Warnf/Errorf wrappers around the
// package-level logrus calls.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger returns a Logger backed by logrus, tagging every line
// with the device name it operates on.
func NewLogrusLogger(device string) Logger {
	return logrusLogger{entry: logrus.WithField("device", device)}
}

func (l logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
