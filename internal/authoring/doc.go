// Package authoring writes the generated episode documents once a title has
// been approved: the description, the title options record, and the two
// social post sets.
package authoring
