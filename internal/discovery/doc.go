// Package discovery extracts a run's working inputs from its episode folder:
// the guest name encoded in the folder name and the transcript document every
// downstream phase reads.
package discovery
