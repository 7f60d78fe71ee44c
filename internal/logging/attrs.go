package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// Attribute constructors mirror slog's so call sites need a single import.

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func String(key string, value string) slog.Attr { return slog.String(key, value) }

// Bytes renders a byte count in IEC units ("1.5 GiB").
func Bytes(key string, n int64) slog.Attr {
	return slog.String(key, humanize.IBytes(uint64(max(n, 0))))
}

// Error records err under the "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags every record with component. A nil logger yields a
// no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}

const (
	defaultErrorHint = "see the ffmpeg output tail in earlier records"
	defaultImpact    = "run continues with reduced output"
)

// WarnWithContext logs a degrade event. event_type is always set; error_hint
// and impact fall back to generic text when the caller omits them.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	emit(logger, slog.LevelWarn, msg, eventType, true, attrs)
}

// ErrorWithContext logs a failure with event_type and error_hint guaranteed.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	emit(logger, slog.LevelError, msg, eventType, false, attrs)
}

func emit(logger *slog.Logger, level slog.Level, msg, eventType string, withImpact bool, attrs []slog.Attr) {
	if logger == nil {
		return
	}
	var hasEvent, hasHint, hasImpact bool
	for _, a := range attrs {
		switch a.Key {
		case FieldEventType:
			hasEvent = true
		case FieldErrorHint:
			hasHint = true
		case FieldImpact:
			hasImpact = true
		}
	}
	if !hasEvent {
		attrs = append(attrs, slog.String(FieldEventType, eventType))
	}
	if !hasHint {
		attrs = append(attrs, slog.String(FieldErrorHint, defaultErrorHint))
	}
	if withImpact && !hasImpact {
		attrs = append(attrs, slog.String(FieldImpact, defaultImpact))
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
