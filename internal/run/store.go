package run

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"packwright/internal/config"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the run database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// NewRun inserts a pending run for a folder. Folder exclusivity is enforced
// by a partial unique index; a second active run for the same folder returns
// ErrActiveRunExists without touching the existing run.
func (s *Store) NewRun(ctx context.Context, folderRef, folderName string) (*Run, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(folderRef) == "" {
		return nil, errors.New("folder ref is empty")
	}
	if strings.TrimSpace(folderName) == "" {
		folderName = folderRef
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            id, folder_ref, folder_name, status, revision, created_at, updated_at
        ) VALUES (?, ?, ?, ?, 1, ?, ?)`,
		id,
		folderRef,
		folderName,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrActiveRunExists
		}
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a run by identifier. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// GetActiveByFolder returns the non-terminal run holding a folder, or nil.
func (s *Store) GetActiveByFolder(ctx context.Context, folderRef string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+` FROM runs
         WHERE folder_ref = ? AND status NOT IN (?, ?, ?)
         ORDER BY created_at LIMIT 1`,
		folderRef,
		StatusCompleted,
		StatusFailed,
		StatusCancelled,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active run: %w", err)
	}
	return r, nil
}

// Update persists changes to an existing run. The write is guarded two ways:
// the status may not move backward relative to what is stored, and the stored
// revision must match the revision the caller loaded. On success the run's
// revision and updated timestamp are bumped in place.
func (s *Store) Update(ctx context.Context, r *Run) error {
	ctx = ensureContext(ctx)
	if r == nil {
		return errors.New("run is nil")
	}

	current, err := s.GetByID(ctx, r.ID)
	if err != nil {
		return err
	}
	if !CanTransition(current.Status, r.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, r.Status)
	}

	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs
         SET folder_name = ?, status = ?, revision = revision + 1, state_json = ?,
             error_message = ?, updated_at = ?, last_heartbeat = ?
         WHERE id = ? AND revision = ?`,
		r.FolderName,
		r.Status,
		nullableString(r.StateJSON),
		nullableString(r.ErrorMessage),
		now.Format(time.RFC3339Nano),
		nullableTime(r.LastHeartbeat),
		r.ID,
		r.Revision,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRevisionConflict
	}

	r.Revision++
	r.UpdatedAt = now
	return nil
}
