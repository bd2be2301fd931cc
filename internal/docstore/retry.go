package docstore

import (
	"context"
	"time"

	"packwright/internal/config"
)

// Retrying wraps a Store and retries transient failures with exponential
// backoff. NotFound, Conflict, and validation failures pass through
// immediately; retrying those would never change the answer.
type Retrying struct {
	inner    Store
	attempts int
	backoff  time.Duration
}

// WithRetries decorates a store with the configured retry bounds.
func WithRetries(inner Store, cfg config.DocStore) *Retrying {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := time.Duration(cfg.RetryBackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	return &Retrying{inner: inner, attempts: attempts, backoff: backoff}
}

func (r *Retrying) retry(ctx context.Context, op func() error) error {
	delay := r.backoff
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
		if attempt == r.attempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return lastErr
}

func (r *Retrying) ListItems(ctx context.Context, folderRef string) ([]Item, error) {
	var items []Item
	err := r.retry(ctx, func() error {
		var opErr error
		items, opErr = r.inner.ListItems(ctx, folderRef)
		return opErr
	})
	return items, err
}

func (r *Retrying) ReadContent(ctx context.Context, docRef string) (string, error) {
	var content string
	err := r.retry(ctx, func() error {
		var opErr error
		content, opErr = r.inner.ReadContent(ctx, docRef)
		return opErr
	})
	return content, err
}

func (r *Retrying) CreateDocument(ctx context.Context, folderRef, name, content string) (string, error) {
	var ref string
	err := r.retry(ctx, func() error {
		var opErr error
		ref, opErr = r.inner.CreateDocument(ctx, folderRef, name, content)
		return opErr
	})
	return ref, err
}

func (r *Retrying) MoveItem(ctx context.Context, itemRef, destFolderRef string) (string, error) {
	var ref string
	err := r.retry(ctx, func() error {
		var opErr error
		ref, opErr = r.inner.MoveItem(ctx, itemRef, destFolderRef)
		return opErr
	})
	return ref, err
}

func (r *Retrying) EnsureFolder(ctx context.Context, parentRef, name string) (string, error) {
	var ref string
	err := r.retry(ctx, func() error {
		var opErr error
		ref, opErr = r.inner.EnsureFolder(ctx, parentRef, name)
		return opErr
	})
	return ref, err
}

func (r *Retrying) CreateShortcut(ctx context.Context, targetRef, destFolderRef, name string) (string, error) {
	var ref string
	err := r.retry(ctx, func() error {
		var opErr error
		ref, opErr = r.inner.CreateShortcut(ctx, targetRef, destFolderRef, name)
		return opErr
	})
	return ref, err
}

func (r *Retrying) DeleteShortcut(ctx context.Context, shortcutRef string) error {
	return r.retry(ctx, func() error {
		return r.inner.DeleteShortcut(ctx, shortcutRef)
	})
}

func (r *Retrying) ListShortcuts(ctx context.Context, folderRef string) ([]Item, error) {
	var items []Item
	err := r.retry(ctx, func() error {
		var opErr error
		items, opErr = r.inner.ListShortcuts(ctx, folderRef)
		return opErr
	})
	return items, err
}
