package preflight

import (
	"context"
	"fmt"
	"strings"

	"packwright/internal/config"
	"packwright/internal/docstore"
	"packwright/internal/run"
)

// markerLocationRoot records that the transcript was found loose in the
// folder root, i.e. the folder has never been packaged.
const markerLocationRoot = "root"

// Classifier decides whether an episode folder is new, already packaged, or
// unusable, based purely on where its transcript lives.
type Classifier struct {
	store  docstore.Store
	layout config.Layout
}

// NewClassifier builds a classifier over the given store and folder layout.
func NewClassifier(store docstore.Store, layout config.Layout) *Classifier {
	return &Classifier{store: store, layout: layout}
}

// Classify inspects a folder's immediate contents and returns its verdict.
//
// A transcript directly in the root means the folder is fresh. A transcript
// inside the organized assets subfolder means a previous run already packaged
// it. No transcript anywhere means there is nothing to package.
func (c *Classifier) Classify(ctx context.Context, folderRef string) (run.Classification, error) {
	items, err := c.store.ListItems(ctx, folderRef)
	if err != nil {
		return run.Classification{}, fmt.Errorf("list folder contents: %w", err)
	}

	if marker := findTranscript(items); marker != nil {
		return run.Classification{
			Kind:           run.ClassificationNew,
			MarkerName:     marker.Name,
			MarkerLocation: markerLocationRoot,
		}, nil
	}

	assetsRef := ""
	for _, item := range items {
		if item.Kind == docstore.KindFolder && item.Name == c.layout.AssetsDir {
			assetsRef = item.Ref
			break
		}
	}
	if assetsRef != "" {
		assetItems, err := c.store.ListItems(ctx, assetsRef)
		if err != nil {
			return run.Classification{}, fmt.Errorf("list assets subfolder: %w", err)
		}
		if marker := findTranscript(assetItems); marker != nil {
			return run.Classification{
				Kind:           run.ClassificationAlreadyPackaged,
				MarkerName:     marker.Name,
				MarkerLocation: c.layout.AssetsDir,
			}, nil
		}
	}

	return run.Classification{
		Kind:   run.ClassificationInvalid,
		Detail: "no transcript found in the folder root or the organized assets subfolder",
	}, nil
}

// findTranscript returns the first document whose name marks it as the
// episode transcript.
func findTranscript(items []docstore.Item) *docstore.Item {
	for i := range items {
		item := &items[i]
		if item.Kind != docstore.KindDocument {
			continue
		}
		if strings.Contains(strings.ToLower(item.Name), "transcript") {
			return item
		}
	}
	return nil
}
