// Package logging configures structured slog output for the daemon and
// CLI, with console and JSON handlers and shared attribute helpers.
package logging
