package organizer

import (
	"context"
	"fmt"
	"log/slog"

	"packwright/internal/config"
	"packwright/internal/content"
	"packwright/internal/docstore"
	"packwright/internal/logging"
	"packwright/internal/run"
)

// Organizer applies the declarative layout rules to an episode folder.
type Organizer struct {
	store  docstore.Store
	layout config.Layout
	rules  []Rule
	logger *slog.Logger
}

// New builds an organizer with the default rule set.
func New(store docstore.Store, layout config.Layout, logger *slog.Logger) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Organizer{store: store, layout: layout, rules: DefaultRules, logger: logger}
}

// Apply computes and executes the operations that bring the folder to its
// target layout: rule-driven moves first, then shortcut creation for the
// generated documents, last, so every shortcut target already sits at its
// final location. Each operation completes or is recorded failed; a failed
// operation never aborts its siblings.
func (o *Organizer) Apply(ctx context.Context, folderRef, guest string, docs []run.Document) ([]run.FileOperation, error) {
	items, err := o.store.ListItems(ctx, folderRef)
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}

	generated := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		generated[doc.Name] = struct{}{}
	}

	var ops []run.FileOperation
	folderRefs := make(map[string]string)

	// Rule-driven moves. Generated documents stay in the root; folders and
	// shortcuts are never moved.
	for _, item := range items {
		if item.Kind != docstore.KindDocument {
			continue
		}
		if _, isGenerated := generated[item.Name]; isGenerated {
			continue
		}
		rule := matchRule(o.rules, item)
		if rule == nil {
			continue
		}
		destName := rule.Dest(o.layout)
		destRef, err := o.ensureFolderCached(ctx, folderRef, destName, folderRefs, &ops)
		if err != nil {
			ops = append(ops, failedOp(run.OpMove, item.Ref, destName, err))
			continue
		}
		moved, err := o.store.MoveItem(ctx, item.Ref, destRef)
		if err != nil {
			if docstore.IsConflict(err) {
				// The destination already holds this item from a prior pass.
				o.logger.Debug("skipping move, destination occupied",
					slog.String(logging.FieldFolder, folderRef),
					slog.String("item", item.Name))
				continue
			}
			ops = append(ops, failedOp(run.OpMove, item.Ref, destRef, err))
			continue
		}
		ops = append(ops, run.FileOperation{
			Kind:        run.OpMove,
			Source:      item.Ref,
			Destination: moved,
			Outcome:     run.OpDone,
			Detail:      rule.Name,
		})
	}

	// Shortcuts into the guest package, created last.
	shortcutOps, err := o.createGuestShortcuts(ctx, folderRef, guest, docs, folderRefs, &ops)
	if err != nil {
		return append(ops, shortcutOps...), err
	}
	return append(ops, shortcutOps...), nil
}

func (o *Organizer) ensureFolderCached(ctx context.Context, parentRef, name string, cache map[string]string, ops *[]run.FileOperation) (string, error) {
	if ref, ok := cache[name]; ok {
		return ref, nil
	}
	existing, err := o.store.ListItems(ctx, parentRef)
	if err == nil {
		for _, item := range existing {
			if item.Kind == docstore.KindFolder && item.Name == name {
				cache[name] = item.Ref
				return item.Ref, nil
			}
		}
	}
	ref, err := o.store.EnsureFolder(ctx, parentRef, name)
	if err != nil {
		return "", err
	}
	cache[name] = ref
	*ops = append(*ops, run.FileOperation{
		Kind:        run.OpCreate,
		Source:      parentRef,
		Destination: ref,
		Outcome:     run.OpDone,
		Detail:      "folder",
	})
	return ref, nil
}

// createGuestShortcuts links every generated document plus the organized
// assets folder into the guest package. An identical shortcut left over from
// a prior pass is kept, not recreated.
func (o *Organizer) createGuestShortcuts(ctx context.Context, folderRef, guest string, docs []run.Document, cache map[string]string, ops *[]run.FileOperation) ([]run.FileOperation, error) {
	guestFolder := content.GuestPackageFolder(o.layout.GuestPackagePrefix, guest)
	guestRef, err := o.ensureFolderCached(ctx, folderRef, guestFolder, cache, ops)
	if err != nil {
		return nil, fmt.Errorf("ensure guest package folder: %w", err)
	}

	existing, err := o.store.ListShortcuts(ctx, guestRef)
	if err != nil {
		return nil, fmt.Errorf("list guest shortcuts: %w", err)
	}
	present := make(map[string]string, len(existing))
	for _, shortcut := range existing {
		present[shortcut.Name] = shortcut.TargetRef
	}

	targets := make([]run.Document, 0, len(docs)+1)
	targets = append(targets, docs...)

	var out []run.FileOperation
	if assetsRef, err := o.ensureFolderCached(ctx, folderRef, o.layout.AssetsDir, cache, ops); err != nil {
		out = append(out, failedOp(run.OpShortcut, o.layout.AssetsDir, guestRef, err))
	} else {
		targets = append(targets, run.Document{Name: o.layout.AssetsDir, Ref: assetsRef})
	}

	for _, target := range targets {
		if existingTarget, ok := present[target.Name]; ok && existingTarget == target.Ref {
			continue
		}
		ref, err := o.store.CreateShortcut(ctx, target.Ref, guestRef, target.Name)
		if err != nil {
			out = append(out, failedOp(run.OpShortcut, target.Ref, guestRef, err))
			continue
		}
		out = append(out, run.FileOperation{
			Kind:        run.OpShortcut,
			Source:      target.Ref,
			Destination: ref,
			Outcome:     run.OpDone,
		})
	}
	return out, nil
}

func failedOp(kind run.OperationKind, source, dest string, err error) run.FileOperation {
	return run.FileOperation{
		Kind:        kind,
		Source:      source,
		Destination: dest,
		Outcome:     run.OpFailed,
		Detail:      err.Error(),
	}
}
