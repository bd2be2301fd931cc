// Package stage defines the handler contract phases implement and small
// helpers shared by their implementations.
package stage
