// Package glog is the logging facade used throughout geff.  It does not
// configure any particular logging backend -- installing a backend (log
// rotation, structured output, shipping to a collector) is the caller's
// concern.  By default messages go to the standard library's log package.
package glog

import (
	"log"
	"time"
)

// ModeFlag is the minimum severity that gets written.
type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	SilentMode
)

// Logger is implemented by any logging backend geff can call into.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type stdLogger struct{}

func (stdLogger) Debugf(format string, args ...interface{})   { log.Printf("   DEBUG "+format, args...) }
func (stdLogger) Infof(format string, args ...interface{})    { log.Printf("    INFO "+format, args...) }
func (stdLogger) Warningf(format string, args ...interface{}) { log.Printf(" WARNING "+format, args...) }
func (stdLogger) Errorf(format string, args ...interface{})   { log.Printf("   ERROR "+format, args...) }

var (
	mode   = InfoMode
	logger Logger = stdLogger{}
)

// SetLogger installs a caller-supplied logging backend.
func SetLogger(l Logger) {
	if l != nil {
		logger = l
	}
}

// SetMode sets the minimum severity required for a message to be written.
func SetMode(m ModeFlag) {
	mode = m
}

func Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		logger.Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		logger.Infof(format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if mode <= WarningMode {
		logger.Warningf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if mode <= ErrorMode {
		logger.Errorf(format, args...)
	}
}

// TimeLog appends elapsed time since its creation to each message logged
// through it.  Useful for bracketing a block codec pass over a large
// dataset:
//
//	tlog := glog.NewTimeLog()
//	...
//	tlog.Infof("wrote %d blocks", n)
type TimeLog struct {
	start time.Time
}

func NewTimeLog() TimeLog {
	return TimeLog{start: time.Now()}
}

func (t TimeLog) Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		logger.Debugf(format+": %s", append(args, time.Since(t.start))...)
	}
}

func (t TimeLog) Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		logger.Infof(format+": %s", append(args, time.Since(t.start))...)
	}
}
