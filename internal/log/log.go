// Package log provides the process-wide structured logger, backed by logrus.
package log

import (
	"os"
	"sync"
)

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

const (
	DefaultPattern = "%time [%level] %field %msg%n"
	DefaultTime    = "2006-01-02 15:04:05.000"
)

var (
	mu     sync.RWMutex
	logger Logger = mustDefault()
)

func mustDefault() Logger {
	l, err := newLogrusAdapter(&LoggerConfig{Level: "info", Pattern: DefaultPattern, Time: DefaultTime}, os.Stderr)
	if err != nil {
		panic(err)
	}
	return l
}

// GetLogger returns the current logger. Before Init it logs at info level to stderr.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init replaces the process logger according to cfg.
func Init(cfg *LoggerConfig) error {
	l, err := newLogrusAdapter(cfg, os.Stderr)
	if err != nil {
		return err
	}
	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}
