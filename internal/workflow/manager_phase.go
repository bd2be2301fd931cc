package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/stage"
)

// loggerAware lets phase handlers receive the per-run logger before Execute.
type loggerAware interface {
	SetLogger(*slog.Logger)
}

func (m *Manager) processRun(ctx context.Context, baseLogger *slog.Logger, r *run.Run) error {
	phase, ok := m.phaseForStatus(r.Status)
	if !ok {
		baseLogger.Warn("no phase configured for status", logging.String("status", string(r.Status)))
		m.waitForRunOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	phaseCtx := withPhaseContext(ctx, phase.name, r, requestID)
	phaseLogger := m.phaseLogger(phaseCtx, baseLogger, r)
	if aware, ok := phase.handler.(loggerAware); ok {
		aware.SetLogger(phaseLogger)
	}

	wasPending := r.Status == run.StatusPending

	if err := m.transitionToProcessing(phaseCtx, phase.processingStatus, r); err != nil {
		phaseLogger.Error("failed to transition run to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}
	if wasPending {
		m.notifyRunStarted(phaseCtx, phaseLogger, r)
	}

	return m.executePhase(phaseCtx, phaseLogger, phase, r)
}

func (m *Manager) executePhase(ctx context.Context, phaseLogger *slog.Logger, phase pipelinePhase, r *run.Run) error {
	phaseStart := time.Now()
	phaseLogger.Info("phase started",
		logging.String(logging.FieldEventType, "phase_start"),
		logging.String("processing_status", string(phase.processingStatus)),
	)

	if err := phase.handler.Prepare(ctx, r); err != nil {
		m.handlePhaseFailure(ctx, phase.name, r, err)
		m.setLastError(err)
		return err
	}

	execErr := m.executeWithHeartbeat(ctx, phase.handler, r)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			phaseLogger.Debug("phase interrupted by shutdown")
			return execErr
		}
		m.handlePhaseFailure(ctx, phase.name, r, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if r.Status == phase.processingStatus {
		r.Status = phase.doneStatus
	}
	r.LastHeartbeat = nil
	if err := m.store.Update(ctx, r); err != nil {
		wrapped := fmt.Errorf("persist phase result: %w", err)
		phaseLogger.Error("failed to persist phase result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	phaseLogger.Info("phase completed",
		logging.String(logging.FieldEventType, "phase_complete"),
		logging.String("next_status", string(r.Status)),
		logging.Duration("phase_duration", time.Since(phaseStart)),
	)
	m.setLastRun(r)
	m.notifyAfterPhase(ctx, phaseLogger, r)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, r *run.Run) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, r.ID)

	execErr := handler.Execute(ctx, r)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, processing run.Status, r *run.Run) error {
	if processing == "" {
		return errors.New("processing status must not be empty")
	}

	now := time.Now().UTC()
	r.Status = processing
	r.ErrorMessage = ""
	r.LastHeartbeat = &now
	if err := m.store.Update(ctx, r); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastRun(r)
	return nil
}
