package services

import "context"

type (
	runIDKey struct{}
	stageKey struct{}
)

// WithRunID returns ctx carrying the run identifier. An empty id leaves ctx
// unchanged.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id, id != ""
}

// WithStage returns ctx carrying the current state machine step.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey{}, stage)
}

// StageFromContext returns the step name stored by WithStage.
func StageFromContext(ctx context.Context) (string, bool) {
	stage, _ := ctx.Value(stageKey{}).(string)
	return stage, stage != ""
}
