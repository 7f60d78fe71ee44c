package logging

import (
	"context"
	"log/slog"

	"chunkmux/internal/services"
)

// Standard record keys.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldStage     = "stage"
	// FieldEventType classifies a record for filtering, e.g. "audio_degraded".
	FieldEventType = "event_type"
	// FieldErrorHint tells an operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldImpact states what the run lost because of a warning.
	FieldImpact = "impact"
)

// WithContext tags logger with the pipeline stage carried by ctx, if any.
// run_id is not added here; the run logger already stamps it on every record.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		return logger.With(slog.String(FieldStage, stage))
	}
	return logger
}
