package run

import (
	"context"
	"fmt"
	"time"
)

// UpdateHeartbeat refreshes the liveness timestamp for an in-flight run.
func (s *Store) UpdateHeartbeat(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE runs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ResetProcessing rolls every in-flight run back to the start of its phase.
// Called on daemon startup so work interrupted by a crash or shutdown resumes
// from its last durable checkpoint. Suspended runs are not touched.
func (s *Store) ResetProcessing(ctx context.Context) (int64, error) {
	return s.rollbackProcessing(ctx, nil)
}

// ReclaimStaleProcessing rolls back runs whose heartbeat expired before the
// cutoff. The owning daemon is presumed dead; the run resumes from the start
// of the interrupted phase on the next poll.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.rollbackProcessing(ctx, &cutoff)
}

func (s *Store) rollbackProcessing(ctx context.Context, cutoff *time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var total int64
	for _, transition := range processingRollbacks {
		query := `UPDATE runs
            SET status = ?, revision = revision + 1, last_heartbeat = NULL, updated_at = ?
            WHERE status = ?`
		args := []any{transition.to, now, transition.from}
		if cutoff != nil {
			query += ` AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`
			args = append(args, cutoff.UTC().Format(time.RFC3339Nano))
		}
		res, err := s.execWithRetry(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("roll back %s runs: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// Cancel marks a run cancelled, releasing its folder exclusivity slot.
// Terminal runs are left alone; the bool reports whether anything changed.
func (s *Store) Cancel(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET status = ?, revision = revision + 1, last_heartbeat = NULL, updated_at = ?
         WHERE id = ? AND status NOT IN (?, ?, ?)`,
		StatusCancelled,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusCompleted,
		StatusFailed,
		StatusCancelled,
	)
	if err != nil {
		return false, fmt.Errorf("cancel run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// RetryFailed moves failed runs back to pending for a fresh attempt. With no
// ids every failed run is retried. Retried runs keep their state blob so
// earlier phase output remains auditable, but execution restarts at preflight.
func (s *Store) RetryFailed(ctx context.Context, ids ...string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE runs
            SET status = ?, revision = revision + 1, error_message = NULL,
                last_heartbeat = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			now,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed runs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, now)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, StatusFailed)
	query := `UPDATE runs
        SET status = ?, revision = revision + 1, error_message = NULL,
            last_heartbeat = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = ?`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected runs: %w", err)
	}
	return res.RowsAffected()
}
