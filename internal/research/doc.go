// Package research wraps the external search backend behind the Provider
// capability. Transport failures are transient; rejected queries are not.
package research
