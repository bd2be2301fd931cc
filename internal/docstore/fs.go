package docstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"packwright/internal/fileutil"
	"packwright/internal/services"
)

// ShortcutExt marks reference entries in the filesystem store. A shortcut is
// a small pointer file whose content is the ref of its target.
const ShortcutExt = ".shortcut"

// FS is a document store rooted at a local directory. Refs are slash-separated
// paths relative to the root; the empty ref is the root itself.
type FS struct {
	root string
}

// NewFS opens a filesystem store rooted at the given directory.
func NewFS(root string) (*FS, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "docstore", "open", "store root is empty", nil)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "docstore", "open", "resolve store root", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "docstore", "open", "create store root", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute directory backing the store.
func (f *FS) Root() string {
	return f.root
}

// resolve maps a ref onto the filesystem. Cleaning against a rooted path
// strips every traversal element, so the result is always inside the root.
func (f *FS) resolve(ref string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(ref))
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(cleaned, "/")))
}

func (f *FS) refFor(absPath string) string {
	rel, err := filepath.Rel(f.root, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}

func classify(operation, message string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrNotFound, "docstore", operation, message, err)
	case errors.Is(err, fs.ErrExist):
		return services.Wrap(services.ErrConflict, "docstore", operation, message, err)
	default:
		return services.Wrap(services.ErrTransient, "docstore", operation, message, err)
	}
}

// ListItems returns the direct children of a folder.
func (f *FS) ListItems(ctx context.Context, folderRef string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := f.resolve(folderRef)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classify("list", fmt.Sprintf("list folder %q", folderRef), err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		item, err := f.itemFor(dir, entry)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *FS) itemFor(dir string, entry os.DirEntry) (Item, error) {
	absPath := filepath.Join(dir, entry.Name())
	item := Item{
		Name: entry.Name(),
		Ref:  f.refFor(absPath),
	}
	info, err := entry.Info()
	if err == nil {
		item.Size = info.Size()
		item.ModifiedAt = info.ModTime().UTC()
	}

	switch {
	case entry.IsDir():
		item.Kind = KindFolder
	case strings.HasSuffix(entry.Name(), ShortcutExt):
		item.Kind = KindShortcut
		item.Name = strings.TrimSuffix(entry.Name(), ShortcutExt)
		target, err := os.ReadFile(absPath)
		if err != nil {
			return Item{}, classify("list", fmt.Sprintf("read shortcut %q", item.Ref), err)
		}
		item.TargetRef = strings.TrimSpace(string(target))
	default:
		item.Kind = KindDocument
	}
	return item, nil
}

// ReadContent returns the text content of a document.
func (f *FS) ReadContent(ctx context.Context, docRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	docPath := f.resolve(docRef)
	data, err := os.ReadFile(docPath)
	if err != nil {
		return "", classify("read", fmt.Sprintf("read document %q", docRef), err)
	}
	return string(data), nil
}

// CreateDocument writes a new document into a folder. An existing document
// with the same name is a conflict, never silently overwritten.
func (f *FS) CreateDocument(ctx context.Context, folderRef, name, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	docPath := filepath.Join(f.resolve(folderRef), name)
	file, err := os.OpenFile(docPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", classify("create", fmt.Sprintf("create document %q in %q", name, folderRef), err)
	}
	defer file.Close()
	if _, err := file.WriteString(content); err != nil {
		_ = os.Remove(docPath)
		return "", classify("create", fmt.Sprintf("write document %q", name), err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(docPath)
		return "", classify("create", fmt.Sprintf("flush document %q", name), err)
	}
	return f.refFor(docPath), nil
}

// MoveItem relocates an item into another folder, keeping its name.
func (f *FS) MoveItem(ctx context.Context, itemRef, destFolderRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	srcPath := f.resolve(itemRef)
	destDir := f.resolve(destFolderRef)

	info, err := os.Stat(srcPath)
	if err != nil {
		return "", classify("move", fmt.Sprintf("stat %q", itemRef), err)
	}
	destPath := filepath.Join(destDir, filepath.Base(srcPath))
	if _, err := os.Stat(destPath); err == nil {
		return "", services.Wrap(services.ErrConflict, "docstore", "move",
			fmt.Sprintf("destination %q already holds %q", destFolderRef, filepath.Base(srcPath)), nil)
	}

	if info.IsDir() {
		if err := os.Rename(srcPath, destPath); err != nil {
			return "", classify("move", fmt.Sprintf("move folder %q", itemRef), err)
		}
	} else if err := fileutil.MoveFile(srcPath, destPath); err != nil {
		return "", classify("move", fmt.Sprintf("move %q", itemRef), err)
	}
	return f.refFor(destPath), nil
}

// EnsureFolder creates a subfolder if absent and returns its ref either way.
func (f *FS) EnsureFolder(ctx context.Context, parentRef, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	dir := filepath.Join(f.resolve(parentRef), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", classify("ensure-folder", fmt.Sprintf("create folder %q in %q", name, parentRef), err)
	}
	return f.refFor(dir), nil
}

// CreateShortcut creates a pointer file referencing targetRef. The target
// must exist; shortcuts to missing items would go stale immediately.
func (f *FS) CreateShortcut(ctx context.Context, targetRef, destFolderRef, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	targetPath := f.resolve(targetRef)
	if _, err := os.Stat(targetPath); err != nil {
		return "", classify("shortcut", fmt.Sprintf("shortcut target %q", targetRef), err)
	}
	shortcutPath := filepath.Join(f.resolve(destFolderRef), name+ShortcutExt)
	file, err := os.OpenFile(shortcutPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", classify("shortcut", fmt.Sprintf("create shortcut %q in %q", name, destFolderRef), err)
	}
	defer file.Close()
	if _, err := file.WriteString(path.Clean(targetRef) + "\n"); err != nil {
		_ = os.Remove(shortcutPath)
		return "", classify("shortcut", fmt.Sprintf("write shortcut %q", name), err)
	}
	return f.refFor(shortcutPath), nil
}

// DeleteShortcut removes a pointer file. It refuses to delete anything that
// is not a shortcut, so a bad ref can never destroy content.
func (f *FS) DeleteShortcut(ctx context.Context, shortcutRef string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasSuffix(shortcutRef, ShortcutExt) {
		return services.Wrap(services.ErrValidation, "docstore", "delete-shortcut",
			fmt.Sprintf("ref %q is not a shortcut", shortcutRef), nil)
	}
	if err := os.Remove(f.resolve(shortcutRef)); err != nil {
		return classify("delete-shortcut", fmt.Sprintf("delete shortcut %q", shortcutRef), err)
	}
	return nil
}

// ListShortcuts returns only the shortcut entries of a folder.
func (f *FS) ListShortcuts(ctx context.Context, folderRef string) ([]Item, error) {
	items, err := f.ListItems(ctx, folderRef)
	if err != nil {
		return nil, err
	}
	shortcuts := items[:0]
	for _, item := range items {
		if item.Kind == KindShortcut {
			shortcuts = append(shortcuts, item)
		}
	}
	return shortcuts, nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return services.Wrap(services.ErrValidation, "docstore", "validate", "item name is empty", nil)
	}
	if strings.ContainsAny(trimmed, "/\\") {
		return services.Wrap(services.ErrValidation, "docstore", "validate",
			fmt.Sprintf("item name %q contains a path separator", name), nil)
	}
	return nil
}
