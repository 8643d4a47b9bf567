package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/charmbracelet/log"
)

// logAdapter routes watermill logs through a charmbracelet logger.
type logAdapter struct {
	logger *log.Logger
}

// NewLogAdapter wraps l as a [watermill.LoggerAdapter].
func NewLogAdapter(l *log.Logger) watermill.LoggerAdapter {
	return &logAdapter{logger: l}
}

func keyvals(fields watermill.LogFields) []any {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}

func (a *logAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(keyvals(fields), "err", err)...)
}

func (a *logAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, keyvals(fields)...)
}

func (a *logAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, keyvals(fields)...)
}

// Trace is folded into debug; charmbracelet/log has no trace level.
func (a *logAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, keyvals(fields)...)
}

func (a *logAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logAdapter{logger: a.logger.With(keyvals(fields)...)}
}
