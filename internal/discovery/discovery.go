package discovery

import (
	"context"
	"fmt"
	"strings"

	"packwright/internal/config"
	"packwright/internal/docstore"
	"packwright/internal/run"
	"packwright/internal/services"
)

// Discoverer extracts the working inputs of a run from its folder: the guest
// name and the transcript document downstream phases read.
type Discoverer struct {
	store  docstore.Store
	layout config.Layout
}

// NewDiscoverer builds a discoverer over the given store and folder layout.
func NewDiscoverer(store docstore.Store, layout config.Layout) *Discoverer {
	return &Discoverer{store: store, layout: layout}
}

// Discover locates the transcript recorded by classification and derives the
// guest name from the folder name.
func (d *Discoverer) Discover(ctx context.Context, folderRef, folderName string, classification run.Classification) (run.Discovery, error) {
	guest := GuestFromFolderName(folderName)
	if guest == "" {
		return run.Discovery{}, services.Wrap(services.ErrValidation, "discovery", "guest_name",
			fmt.Sprintf("folder name %q does not follow the <episode> - <guest> convention", folderName), nil)
	}

	searchRef := folderRef
	if classification.MarkerLocation != "" && classification.MarkerLocation != "root" {
		ref, err := d.subfolderRef(ctx, folderRef, classification.MarkerLocation)
		if err != nil {
			return run.Discovery{}, err
		}
		searchRef = ref
	}

	items, err := d.store.ListItems(ctx, searchRef)
	if err != nil {
		return run.Discovery{}, fmt.Errorf("list folder contents: %w", err)
	}
	for _, item := range items {
		if item.Kind != docstore.KindDocument {
			continue
		}
		if strings.Contains(strings.ToLower(item.Name), "transcript") {
			return run.Discovery{
				GuestName:      guest,
				TranscriptRef:  item.Ref,
				TranscriptName: item.Name,
			}, nil
		}
	}
	return run.Discovery{}, services.Wrap(services.ErrValidation, "discovery", "transcript",
		"transcript recorded at classification is no longer present", nil)
}

func (d *Discoverer) subfolderRef(ctx context.Context, folderRef, name string) (string, error) {
	items, err := d.store.ListItems(ctx, folderRef)
	if err != nil {
		return "", fmt.Errorf("list folder contents: %w", err)
	}
	for _, item := range items {
		if item.Kind == docstore.KindFolder && item.Name == name {
			return item.Ref, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "discovery", "transcript",
		fmt.Sprintf("subfolder %q recorded at classification is missing", name), nil)
}

// GuestFromFolderName derives the guest name from an episode folder name.
// The convention is "<episode label> - <guest name>"; everything after the
// last " - " separator is the guest.
func GuestFromFolderName(folderName string) string {
	folderName = strings.TrimSpace(folderName)
	idx := strings.LastIndex(folderName, " - ")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(folderName[idx+len(" - "):])
}
