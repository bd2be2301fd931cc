package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"packwright/internal/docstore"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
)

// StartRun resolves a folder by name at the store root and enqueues a
// packaging run for it. One active run per folder is enforced by the store.
func (d *Daemon) StartRun(ctx context.Context, folderName string) (*run.Run, error) {
	trimmed := strings.TrimSpace(folderName)
	if trimmed == "" {
		return nil, services.Wrap(services.ErrValidation, "daemon", "start_run", "folder name is required", nil)
	}

	folderRef, err := d.resolveFolder(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	r, err := d.store.NewRun(ctx, folderRef, trimmed)
	if err != nil {
		if errors.Is(err, run.ErrActiveRunExists) {
			return nil, services.Wrap(services.ErrConflict, "daemon", "start_run",
				fmt.Sprintf("folder %q already has an active run", trimmed), nil)
		}
		return nil, err
	}
	d.logger.Info("run enqueued",
		logging.String(logging.FieldRunID, r.ID),
		logging.String(logging.FieldFolder, trimmed))
	return r, nil
}

func (d *Daemon) resolveFolder(ctx context.Context, name string) (string, error) {
	items, err := d.docs.ListItems(ctx, "")
	if err != nil {
		if docstore.IsNotFound(err) {
			return "", services.Wrap(services.ErrNotFound, "daemon", "start_run", "document store root not found", err)
		}
		return "", fmt.Errorf("list store root: %w", err)
	}
	for _, item := range items {
		if item.Kind == docstore.KindFolder && item.Name == name {
			return item.Ref, nil
		}
	}
	return "", services.Wrap(services.ErrNotFound, "daemon", "start_run",
		fmt.Sprintf("no folder named %q at the store root", name), nil)
}

// ListRuns returns runs filtered by optional statuses.
func (d *Daemon) ListRuns(ctx context.Context, statuses []run.Status) ([]*run.Run, error) {
	if d.store == nil {
		return nil, errors.New("run store unavailable")
	}
	return d.store.List(ctx, statuses...)
}

// GetRun returns a single run by identifier.
func (d *Daemon) GetRun(ctx context.Context, id string) (*run.Run, error) {
	if d.store == nil {
		return nil, errors.New("run store unavailable")
	}
	return d.store.GetByID(ctx, id)
}

// Decide applies a human decision to a suspended run and resumes it.
func (d *Daemon) Decide(ctx context.Context, runID, optionID string) (*run.Run, error) {
	r, err := d.gate.Decide(ctx, runID, optionID)
	if err != nil {
		return nil, err
	}
	d.logger.Info("decision recorded",
		logging.String(logging.FieldRunID, r.ID),
		logging.String("option", optionID),
		logging.String("status", string(r.Status)))
	return r, nil
}

// CancelRun cancels a suspended run. Runs that are mid-phase cannot be
// cancelled; the request is rejected so a phase never observes its run
// vanishing underneath it.
func (d *Daemon) CancelRun(ctx context.Context, id string) (*run.Run, error) {
	r, err := d.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsSuspended() {
		return nil, services.Wrap(services.ErrValidation, "daemon", "cancel_run",
			fmt.Sprintf("run is %s; only suspended runs accept cancellation", r.Status), nil)
	}
	cancelled, err := d.store.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, services.Wrap(services.ErrConflict, "daemon", "cancel_run",
			"run changed state before the cancellation applied", nil)
	}
	d.logger.Info("run cancelled", logging.String(logging.FieldRunID, id))
	return d.store.GetByID(ctx, id)
}

// ClearCompleted removes only completed runs.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("run store unavailable")
	}
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes only failed runs.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("run store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// RetryFailed resets failed runs (optionally a subset) back to pending.
func (d *Daemon) RetryFailed(ctx context.Context, ids []string) (int64, error) {
	if d.store == nil {
		return 0, errors.New("run store unavailable")
	}
	return d.store.RetryFailed(ctx, ids...)
}

// ResetStuck rolls in-flight runs back to the start of their phase.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("run store unavailable")
	}
	return d.store.ResetProcessing(ctx)
}

// RunHealth returns aggregate run diagnostics.
func (d *Daemon) RunHealth(ctx context.Context) (run.HealthSummary, error) {
	if d.store == nil {
		return run.HealthSummary{}, errors.New("run store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (run.DatabaseHealth, error) {
	if d.store == nil {
		return run.DatabaseHealth{}, errors.New("run store unavailable")
	}
	return d.store.CheckHealth(ctx)
}
