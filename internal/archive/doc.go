// Package archive implements the dated archive-and-replace step that runs
// before a re-package regenerates artifacts over an already packaged folder.
package archive
