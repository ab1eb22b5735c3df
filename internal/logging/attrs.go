package logging

import (
	"context"
	"log/slog"
	"time"
)

// Standard structured field keys.
const (
	FieldComponent = "component"
	// FieldEventType classifies a line for filtering, e.g. cache_hit.
	FieldEventType = "event_type"
	// FieldErrorHint is the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldCorrelationID ties together the lines of one discovery run.
	FieldCorrelationID = "correlation_id"
	FieldSpecies       = "species"
	FieldRelease       = "release"
	FieldAssembly      = "assembly"
	FieldCacheKey      = "cache_key"
)

type Attr = slog.Attr

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error records err under the "error" key; a nil error is logged as <nil>.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// warnDefaults are injected by WarnWithContext when the caller omits them.
var warnDefaults = []struct{ key, value string }{
	{FieldErrorHint, "check logs for details"},
	{FieldImpact, "operation completed with warnings"},
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	present := make(map[string]bool, len(attrs))
	args := make([]any, 0, len(attrs)+3)
	for _, attr := range attrs {
		present[attr.Key] = true
		args = append(args, attr)
	}
	if !present[FieldEventType] {
		args = append(args, String(FieldEventType, eventType))
	}
	for _, def := range warnDefaults {
		if !present[def.key] {
			args = append(args, String(def.key, def.value))
		}
	}
	logger.Warn(msg, args...)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h discardHandler) WithGroup(string) slog.Handler { return h }
