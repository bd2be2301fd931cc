// Package docstore defines the document-storage capability the packaging
// pipeline runs against, plus a filesystem implementation.
//
// Refs are opaque store-relative identifiers. Shortcuts are reference
// entries: they point at another item without duplicating content, and
// deleting one never touches its target. Failures are classifiable as
// not-found, conflict, or transient; the Retrying decorator retries only the
// transient class within configured bounds.
package docstore
