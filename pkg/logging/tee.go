package logging

import (
	"context"
	"errors"
)

// teeLogger fans every entry out to several loggers
type teeLogger []Logger

// Tee returns a logger writing to all of loggers. Nil entries are dropped;
// with nothing left a NullLogger is returned.
func Tee(loggers ...Logger) Logger {
	var t teeLogger
	for _, l := range loggers {
		if l != nil {
			t = append(t, l)
		}
	}
	switch len(t) {
	case 0:
		return NewNullLogger()
	case 1:
		return t[0]
	}
	return t
}

func (t teeLogger) Debug(ctx context.Context, msg string, fields Fields) {
	for _, l := range t {
		l.Debug(ctx, msg, fields)
	}
}

func (t teeLogger) Info(ctx context.Context, msg string, fields Fields) {
	for _, l := range t {
		l.Info(ctx, msg, fields)
	}
}

func (t teeLogger) Warn(ctx context.Context, msg string, fields Fields) {
	for _, l := range t {
		l.Warn(ctx, msg, fields)
	}
}

func (t teeLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	for _, l := range t {
		l.Error(ctx, msg, err, fields)
	}
}

func (t teeLogger) WithFields(fields Fields) Logger {
	out := make(teeLogger, len(t))
	for i, l := range t {
		out[i] = l.WithFields(fields)
	}
	return out
}

func (t teeLogger) Close() error {
	var errs []error
	for _, l := range t {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
