package workflow

import (
	"context"
	"errors"
	"log/slog"

	"packwright/internal/logging"
	"packwright/internal/run"
)

func (m *Manager) notifyRunStarted(ctx context.Context, logger *slog.Logger, r *run.Run) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyRunStarted(ctx, r.FolderName); err != nil {
		logNotifyFailure(ctx, logger, "run start notification failed", err)
	}
}

// notifyAfterPhase inspects where the phase left the run and emits the
// matching lifecycle notification. Suspensions and completion are the only
// stops a human cares about.
func (m *Manager) notifyAfterPhase(ctx context.Context, logger *slog.Logger, r *run.Run) {
	if m.notifier == nil {
		return
	}
	switch r.Status {
	case run.StatusAwaitingRepackage:
		if err := m.notifier.NotifyApprovalNeeded(ctx, r.FolderName, "re-package"); err != nil {
			logNotifyFailure(ctx, logger, "approval notification failed", err)
		}
	case run.StatusAwaitingTitle:
		if err := m.notifier.NotifyApprovalNeeded(ctx, r.FolderName, "title"); err != nil {
			logNotifyFailure(ctx, logger, "approval notification failed", err)
		}
	case run.StatusCompleted:
		succeeded, failed := operationCounts(r)
		if err := m.notifier.NotifyRunCompleted(ctx, r.FolderName, succeeded, failed); err != nil {
			logNotifyFailure(ctx, logger, "completion notification failed", err)
		}
	}
}

func (m *Manager) notifyRunFailed(ctx context.Context, logger *slog.Logger, r *run.Run, phaseErr error) {
	if m.notifier == nil || phaseErr == nil {
		return
	}
	if err := m.notifier.NotifyRunFailed(ctx, r.FolderName, phaseErr.Error()); err != nil {
		logNotifyFailure(ctx, logger, "failure notification failed", err)
	}
}

func operationCounts(r *run.Run) (succeeded, failed int) {
	state, err := r.State()
	if err != nil {
		return 0, 0
	}
	for _, op := range state.Operations {
		switch op.Outcome {
		case run.OpDone:
			succeeded++
		case run.OpFailed:
			failed++
		}
	}
	return succeeded, failed
}

func logNotifyFailure(ctx context.Context, logger *slog.Logger, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		logger.Debug("daemon shutting down, notification dropped")
		return
	}
	logger.Debug(msg, logging.Error(err))
}
