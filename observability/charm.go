package observability

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// LogConfig selects the output and format of a charm-backed Logger.
type LogConfig struct {
	Level      string
	JSON       bool
	Output     io.Writer
	TimeFormat string
}

type charmLogger struct {
	l *charmlog.Logger
}

// NewCharmLogger returns a Logger writing through charmbracelet/log. Unknown
// levels fall back to info.
func NewCharmLogger(cfg LogConfig) Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = "15:04:05"
	}
	level, err := charmlog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = charmlog.InfoLevel
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           level,
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return &charmLogger{l: l}
}

func (c *charmLogger) Debug(msg string, fields ...Field) { c.l.Debug(msg, keyvals(fields)...) }
func (c *charmLogger) Info(msg string, fields ...Field)  { c.l.Info(msg, keyvals(fields)...) }
func (c *charmLogger) Warn(msg string, fields ...Field)  { c.l.Warn(msg, keyvals(fields)...) }
func (c *charmLogger) Error(msg string, fields ...Field) { c.l.Error(msg, keyvals(fields)...) }

func (c *charmLogger) With(fields ...Field) Logger {
	return &charmLogger{l: c.l.With(keyvals(fields)...)}
}

func keyvals(fields []Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		if f == nil {
			continue
		}
		kv = append(kv, f.Key(), f.Value())
	}
	return kv
}
