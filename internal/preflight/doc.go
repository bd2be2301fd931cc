// Package preflight classifies episode folders before a run commits to any
// work, and verifies the environment the daemon needs.
//
// Classification looks only at where the transcript lives: loose in the
// folder root means new, inside the organized assets subfolder means already
// packaged, nowhere means invalid. Invalid folders fail the run before any
// phase touches the store.
package preflight
