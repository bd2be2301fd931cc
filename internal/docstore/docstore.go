package docstore

import (
	"context"
	"time"
)

// ItemKind distinguishes the entry types a folder can contain.
type ItemKind string

const (
	KindDocument ItemKind = "document"
	KindFolder   ItemKind = "folder"
	KindShortcut ItemKind = "shortcut"
)

// Item is one entry in a store folder. Refs are opaque to callers; they are
// only ever passed back into the same store.
type Item struct {
	Name       string
	Ref        string
	Kind       ItemKind
	Size       int64
	ModifiedAt time.Time
	// TargetRef is the referenced item for shortcuts, empty otherwise.
	TargetRef string
}

// Store is the document-storage capability the pipeline runs against. All
// failures are classifiable with IsNotFound, IsConflict, or IsTransient;
// only transient failures are worth retrying.
type Store interface {
	// ListItems returns the direct children of a folder.
	ListItems(ctx context.Context, folderRef string) ([]Item, error)
	// ReadContent returns the text content of a document.
	ReadContent(ctx context.Context, docRef string) (string, error)
	// CreateDocument writes a new document into a folder and returns its ref.
	// Creating a document with a name that already exists is a conflict.
	CreateDocument(ctx context.Context, folderRef, name, content string) (string, error)
	// MoveItem relocates an item into another folder, keeping its name.
	MoveItem(ctx context.Context, itemRef, destFolderRef string) (string, error)
	// EnsureFolder creates a subfolder if absent and returns its ref either way.
	EnsureFolder(ctx context.Context, parentRef, name string) (string, error)
	// CreateShortcut creates a reference entry pointing at targetRef. The
	// shortcut carries no content of its own.
	CreateShortcut(ctx context.Context, targetRef, destFolderRef, name string) (string, error)
	// DeleteShortcut removes a reference entry, never its target.
	DeleteShortcut(ctx context.Context, shortcutRef string) error
	// ListShortcuts returns only the shortcut entries of a folder.
	ListShortcuts(ctx context.Context, folderRef string) ([]Item, error)
}
