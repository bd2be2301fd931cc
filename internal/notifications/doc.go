// Package notifications sends push notifications for run lifecycle events
// through ntfy. Without a configured topic every notification is a no-op.
package notifications
