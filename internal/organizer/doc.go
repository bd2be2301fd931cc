// Package organizer applies the declarative layout rules that turn a loose
// episode folder into its packaged shape: media sorted into subfolders,
// generated documents kept in the root, and a guest package of reference
// shortcuts created last so every target already sits at its final location.
package organizer
