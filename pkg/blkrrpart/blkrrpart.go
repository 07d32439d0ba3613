// Package blkrrpart notifies the Linux kernel that a block device's
// partition table has changed on disk and queries its logical sector size.
// This is the one "build-time option" spec.md §6 carves out as a
// platform-specific helper, deliberately kept outside pkg/gpt: re-reading
// the kernel's partition table is a side channel, not a property of GPT
// itself.
package blkrrpart

import "errors"

// ErrUnsupported is returned by Reread and SectorSize on platforms other
// than Linux.
var ErrUnsupported = errors.New("blkrrpart: unsupported on this platform")

// Logger is the minimal logging surface this package needs, grounded on
// pkg/elog/logger.go's Logger interface — a thin wrapper in front of
// logrus rather than calling its package-level functions directly.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// NopLogger discards everything logged through it.
func NopLogger() Logger { return nopLogger{} }
