package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"packwright/internal/logging"
	"packwright/internal/run"
)

func (m *Manager) handlePhaseFailure(ctx context.Context, phaseName string, r *run.Run, phaseErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := m.phaseLogger(ctx, base, r).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := classifyPhaseFailure(phaseName, phaseErr)
	r.SetFailed(message)

	logger.Error("phase failed",
		logging.String("resolved_status", string(run.StatusFailed)),
		logging.String("error_message", message),
		logging.Error(phaseErr),
		logging.String(logging.FieldEventType, "phase_failure"),
	)

	if err := m.store.Update(ctx, r); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update phase failure")
		} else {
			logger.Error("failed to persist phase failure", logging.Error(err))
		}
	}

	m.setLastRun(r)
	m.notifyRunFailed(ctx, logger, r, phaseErr)
}

func classifyPhaseFailure(phaseName string, phaseErr error) string {
	if phaseErr == nil {
		if phaseName != "" {
			return fmt.Sprintf("%s failed without error detail", phaseName)
		}
		return "workflow failed without error detail"
	}
	message := strings.TrimSpace(phaseErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", phaseName)
	}
	return message
}
