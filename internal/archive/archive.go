package archive

import (
	"context"
	"fmt"
	"time"

	"packwright/internal/config"
	"packwright/internal/docstore"
	"packwright/internal/run"
	"packwright/internal/services"
)

// Manager moves superseded artifacts into dated archive subfolders before a
// re-package overwrites them.
type Manager struct {
	store  docstore.Store
	layout config.Layout
}

// NewManager builds an archive manager over the given store and layout.
func NewManager(store docstore.Store, layout config.Layout) *Manager {
	return &Manager{store: store, layout: layout}
}

// Archive relocates every existing artifact in the folder root whose name is
// about to be regenerated into <archive_dir>/<date>/, then deletes shortcuts
// anywhere in the folder tree that still point at the old artifacts.
//
// Dated folders from prior re-packages are never overwritten: a same-day
// collision gets a distinct suffixed folder. The move set is all-or-nothing;
// on a mid-step failure already-moved artifacts are restored and the error
// is returned so the run fails rather than generating over a half-archive.
func (m *Manager) Archive(ctx context.Context, folderRef string, artifactNames []string, date time.Time) ([]run.FileOperation, error) {
	wanted := make(map[string]struct{}, len(artifactNames))
	for _, name := range artifactNames {
		wanted[name] = struct{}{}
	}

	items, err := m.store.ListItems(ctx, folderRef)
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}

	var targets []docstore.Item
	for _, item := range items {
		if item.Kind != docstore.KindDocument {
			continue
		}
		if _, ok := wanted[item.Name]; ok {
			targets = append(targets, item)
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	datedRef, datedName, err := m.ensureDatedFolder(ctx, folderRef, targets, date)
	if err != nil {
		return nil, err
	}

	ops := make([]run.FileOperation, 0, len(targets))
	moved := make([]string, 0, len(targets))
	for _, target := range targets {
		newRef, err := m.store.MoveItem(ctx, target.Ref, datedRef)
		if err != nil {
			m.rollback(ctx, moved, folderRef)
			return nil, services.Wrap(services.ErrExternal, "archive", "move",
				fmt.Sprintf("archive %q into %q", target.Name, datedName), err)
		}
		moved = append(moved, newRef)
		ops = append(ops, run.FileOperation{
			Kind:        run.OpArchive,
			Source:      target.Ref,
			Destination: newRef,
			Outcome:     run.OpDone,
		})
	}

	staleOps, err := m.deleteStaleShortcuts(ctx, folderRef, wanted)
	if err != nil {
		return append(ops, staleOps...), err
	}
	return append(ops, staleOps...), nil
}

// ensureDatedFolder picks a dated archive subfolder that does not already
// hold any of the artifacts being archived.
func (m *Manager) ensureDatedFolder(ctx context.Context, folderRef string, targets []docstore.Item, date time.Time) (string, string, error) {
	archiveRef, err := m.store.EnsureFolder(ctx, folderRef, m.layout.ArchiveDir)
	if err != nil {
		return "", "", fmt.Errorf("ensure archive folder: %w", err)
	}

	base := date.UTC().Format("2006-01-02")
	for attempt := 1; ; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s (%d)", base, attempt)
		}
		datedRef, err := m.store.EnsureFolder(ctx, archiveRef, name)
		if err != nil {
			return "", "", fmt.Errorf("ensure dated folder: %w", err)
		}
		existing, err := m.store.ListItems(ctx, datedRef)
		if err != nil {
			return "", "", fmt.Errorf("list dated folder: %w", err)
		}
		if !anyNameCollision(existing, targets) {
			return datedRef, name, nil
		}
	}
}

func anyNameCollision(existing []docstore.Item, targets []docstore.Item) bool {
	names := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		names[item.Name] = struct{}{}
	}
	for _, target := range targets {
		if _, ok := names[target.Name]; ok {
			return true
		}
	}
	return false
}

// rollback moves archived artifacts back to the folder root after a partial
// failure. Best effort; the run fails either way.
func (m *Manager) rollback(ctx context.Context, movedRefs []string, folderRef string) {
	for _, ref := range movedRefs {
		_, _ = m.store.MoveItem(ctx, ref, folderRef)
	}
}

// deleteStaleShortcuts removes shortcuts in the folder root and its direct
// subfolders that point at artifacts just archived. The archive tree itself
// is skipped.
func (m *Manager) deleteStaleShortcuts(ctx context.Context, folderRef string, archivedNames map[string]struct{}) ([]run.FileOperation, error) {
	folders := []string{folderRef}
	items, err := m.store.ListItems(ctx, folderRef)
	if err != nil {
		return nil, fmt.Errorf("list folder for shortcut sweep: %w", err)
	}
	for _, item := range items {
		if item.Kind == docstore.KindFolder && item.Name != m.layout.ArchiveDir {
			folders = append(folders, item.Ref)
		}
	}

	var ops []run.FileOperation
	for _, ref := range folders {
		shortcuts, err := m.store.ListShortcuts(ctx, ref)
		if err != nil {
			return ops, fmt.Errorf("list shortcuts: %w", err)
		}
		for _, shortcut := range shortcuts {
			if _, ok := archivedNames[shortcut.Name]; !ok {
				continue
			}
			if err := m.store.DeleteShortcut(ctx, shortcut.Ref); err != nil {
				return ops, services.Wrap(services.ErrExternal, "archive", "delete-shortcut",
					fmt.Sprintf("remove stale shortcut %q", shortcut.Name), err)
			}
			ops = append(ops, run.FileOperation{
				Kind:    run.OpDelete,
				Source:  shortcut.Ref,
				Outcome: run.OpDone,
				Detail:  "stale shortcut to archived artifact",
			})
		}
	}
	return ops, nil
}
