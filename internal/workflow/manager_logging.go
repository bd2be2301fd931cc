package workflow

import (
	"context"
	"log/slog"

	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
)

func (m *Manager) phaseLogger(ctx context.Context, base *slog.Logger, r *run.Run) *slog.Logger {
	if base == nil {
		base = m.logger
	}
	if base == nil {
		base = logging.NewNop()
	}
	if r != nil {
		base = base.With(
			logging.String(logging.FieldRunID, r.ID),
			logging.String(logging.FieldFolder, r.FolderName),
		)
	}
	return logging.WithContext(ctx, base)
}

func withPhaseContext(ctx context.Context, phaseName string, r *run.Run, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if r != nil {
		ctx = services.WithRunID(ctx, r.ID)
	}
	if phaseName != "" {
		ctx = services.WithPhase(ctx, phaseName)
	}
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}
