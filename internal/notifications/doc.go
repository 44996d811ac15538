// Package notifications sends push notifications about sync passes via
// ntfy, falling back to a noop service when no topic is configured.
package notifications
