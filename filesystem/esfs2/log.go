package esfs2

import "github.com/sirupsen/logrus"

// packageLogger is the default logger used by Mount when MountOptions.Logger
// is nil. It is deliberately quiet by default (WarnLevel) so embedding an
// esfs2 mount into a host binary does not spam stderr with debug traces
// unless the host asks for them.
var packageLogger = newDefaultLogger()

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// MountOptions configures a Mount call. The zero value is valid and uses
// the package's default, quiet logger.
type MountOptions struct {
	// Logger receives diagnostic entries for mount validation, directory
	// slot skips, and extent-list truncation. Defaults to a package-level
	// logrus.Logger at WarnLevel.
	Logger *logrus.Logger
}

func (o MountOptions) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return packageLogger
}
