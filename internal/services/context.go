package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	phaseKey     contextKey = "phase"
	taskKey      contextKey = "task"
	requestIDKey contextKey = "request_id"
)

// WithRunID annotates context with the packaging run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPhase annotates context with the workflow phase name.
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the phase name if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(phaseKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTask annotates context with an analysis task name.
func WithTask(ctx context.Context, task string) context.Context {
	if task == "" {
		return ctx
	}
	return context.WithValue(ctx, taskKey, task)
}

// TaskFromContext returns the analysis task name if present.
func TaskFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taskKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
