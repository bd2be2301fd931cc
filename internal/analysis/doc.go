// Package analysis runs the concurrent fan-out round that digests an
// episode's source material into small structured results.
//
// Tasks are independent: no task consumes another's output, and one task's
// failure never cancels its siblings. Each task gets one retry; a failed
// non-critical task downgrades the round to degraded, a failed critical task
// or an oversized payload fails it outright.
package analysis
