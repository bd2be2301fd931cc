package delivery_test

import (
	"context"
	"strings"
	"testing"

	"packwright/internal/delivery"
	"packwright/internal/docstore"
	"packwright/internal/run"
)

func TestHandlerWritesSummaryDocument(t *testing.T) {
	store, err := docstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ctx := context.Background()
	folder, err := store.EnsureFolder(ctx, "", "Episode 40 - Jane Doe")
	if err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}

	r, state := sampleRun()
	r.FolderRef = folder
	if err := r.SetState(state); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	h := delivery.NewHandler(store, nil)
	if err := h.Execute(ctx, r); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	body, err := store.ReadContent(ctx, folder+"/Jane Doe - Delivery Summary")
	if err != nil {
		t.Fatalf("summary document missing: %v", err)
	}
	if !strings.Contains(body, "3 operations succeeded, 1 failed") {
		t.Fatalf("summary document incomplete:\n%s", body)
	}

	got, err := r.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if got.Summary == "" {
		t.Fatal("summary not recorded on the run")
	}
	last := got.Operations[len(got.Operations)-1]
	if last.Kind != run.OpCreate || !strings.Contains(last.Destination, "Delivery Summary") {
		t.Fatalf("summary creation not logged: %#v", last)
	}

	// A rerun after an interruption reuses the document instead of failing.
	if err := h.Execute(ctx, r); err != nil {
		t.Fatalf("rerun: %v", err)
	}
}
