package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"packwright/internal/config"
	"packwright/internal/logging"
	"packwright/internal/run"
	"packwright/internal/services"
)

// Task is one independent unit of analysis work. Tasks share no data with
// each other; everything a task needs arrives through its inputs.
type Task struct {
	Name string
	// Critical marks a task later phases strictly require. A critical task
	// exhausting its retry fails the whole round.
	Critical bool
	// MaxPayloadBytes bounds the task's result size. Exceeding it is a task
	// defect and fails the round regardless of criticality.
	MaxPayloadBytes int
	Run             func(ctx context.Context) (json.RawMessage, error)
}

// Runner executes a fan-out round and merges the results.
type Runner struct {
	cfg    config.Analysis
	logger *slog.Logger
}

// NewRunner builds a runner with the configured timeouts and concurrency.
func NewRunner(cfg config.Analysis, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

type slotResult struct {
	result run.TaskResult
	defect error
}

// Run dispatches every task concurrently and waits for all of them or the
// fan-in timeout. A failed task is retried once; a second failure downgrades
// the round to degraded unless the task is critical. Sibling tasks are never
// cancelled by one task's failure.
func (r *Runner) Run(ctx context.Context, tasks []Task) (run.AnalysisOutcome, error) {
	outcome := run.AnalysisOutcome{Results: make(map[string]run.TaskResult, len(tasks))}
	if len(tasks) == 0 {
		return outcome, nil
	}

	fanInTimeout := time.Duration(r.cfg.FanInTimeout) * time.Second
	if fanInTimeout <= 0 {
		fanInTimeout = 5 * time.Minute
	}
	roundCtx, cancel := context.WithTimeout(ctx, fanInTimeout)
	defer cancel()

	slots := make([]slotResult, len(tasks))
	var group errgroup.Group
	if r.cfg.MaxConcurrent > 0 {
		group.SetLimit(r.cfg.MaxConcurrent)
	}

	for i, task := range tasks {
		i, task := i, task
		group.Go(func() error {
			slots[i] = r.runTask(roundCtx, task)
			return nil
		})
	}
	_ = group.Wait()

	for i, task := range tasks {
		if slots[i].defect != nil {
			return outcome, slots[i].defect
		}
		result := slots[i].result
		outcome.Results[task.Name] = result
		if result.Status != run.TaskFailed {
			continue
		}
		if task.Critical {
			return outcome, services.Wrap(services.ErrExternal, "analysis", task.Name,
				"critical analysis task failed after retry", fmt.Errorf("%s", result.Error))
		}
		outcome.Degraded = true
		outcome.Missing = append(outcome.Missing, task.Name)
	}
	sort.Strings(outcome.Missing)
	return outcome, nil
}

// runTask executes one task with a per-attempt timeout and a single retry.
func (r *Runner) runTask(ctx context.Context, task Task) slotResult {
	taskTimeout := time.Duration(r.cfg.TaskTimeout) * time.Second
	if taskTimeout <= 0 {
		taskTimeout = 2 * time.Minute
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, taskTimeout)
		payload, err := task.Run(attemptCtx)
		cancel()

		if err == nil {
			if task.MaxPayloadBytes > 0 && len(payload) > task.MaxPayloadBytes {
				return slotResult{defect: services.Wrap(services.ErrValidation, "analysis", task.Name,
					fmt.Sprintf("payload %d bytes exceeds declared bound %d", len(payload), task.MaxPayloadBytes), nil)}
			}
			return slotResult{result: run.TaskResult{Name: task.Name, Status: run.TaskOk, Payload: payload}}
		}

		lastErr = err
		r.logger.Warn("analysis task attempt failed",
			slog.String(logging.FieldTask, task.Name),
			slog.Int("attempt", attempt),
			logging.Error(err))
		if ctx.Err() != nil {
			break
		}
	}

	return slotResult{result: run.TaskResult{
		Name:   task.Name,
		Status: run.TaskFailed,
		Error:  lastErr.Error(),
	}}
}
