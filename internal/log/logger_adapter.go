package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// LoggerConfig configures the logrus backend.
type LoggerConfig struct {
	Pattern string          `mapstructure:"pattern" yaml:"pattern"`
	Time    string          `mapstructure:"time" yaml:"time"`
	Level   string          `mapstructure:"level" yaml:"level"`
	File    FileAppenderOpt `mapstructure:"file" yaml:"file"`
}

type logrusAdapter struct {
	entry *logrus.Entry
}

func newLogrusAdapter(cfg *LoggerConfig, console io.Writer) (*logrusAdapter, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	timeLayout := cfg.Time
	if timeLayout == "" {
		timeLayout = DefaultTime
	}

	l := logrus.New()
	l.SetFormatter(&formatter{
		pattern: pattern,
		time:    timeLayout,
	})
	l.SetLevel(level)

	out := NewMultiWriter().Add(console)
	if cfg.File.Enabled {
		if cfg.File.Filename == "" {
			return nil, fmt.Errorf("file appender requires a filename")
		}
		out.AddFileAppender(cfg.File)
	}
	l.SetOutput(out)

	return &logrusAdapter{entry: logrus.NewEntry(l)}, nil
}

func (l *logrusAdapter) Print(args ...interface{})                 { l.entry.Print(args...) }
func (l *logrusAdapter) Printf(format string, args ...interface{}) { l.entry.Printf(format, args...) }

func (l *logrusAdapter) Trace(args ...interface{})                 { l.entry.Trace(args...) }
func (l *logrusAdapter) Tracef(format string, args ...interface{}) { l.entry.Tracef(format, args...) }

func (l *logrusAdapter) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *logrusAdapter) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

func (l *logrusAdapter) Info(args ...interface{})                 { l.entry.Info(args...) }
func (l *logrusAdapter) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }

func (l *logrusAdapter) Warn(args ...interface{})                 { l.entry.Warn(args...) }
func (l *logrusAdapter) Warnf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }

func (l *logrusAdapter) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *logrusAdapter) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *logrusAdapter) Fatal(args ...interface{})                 { l.entry.Fatal(args...) }
func (l *logrusAdapter) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

func (l *logrusAdapter) WithField(field string, value interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithField(field, value)}
}
func (l *logrusAdapter) WithFields(fields map[string]interface{}) Logger {
	return &logrusAdapter{entry: l.entry.WithFields(fields)}
}
func (l *logrusAdapter) WithError(err error) Logger {
	return &logrusAdapter{entry: l.entry.WithError(err)}
}

func (l *logrusAdapter) IsTraceEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.TraceLevel)
}
func (l *logrusAdapter) IsDebugEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}
func (l *logrusAdapter) IsInfoEnabled() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.InfoLevel)
}
