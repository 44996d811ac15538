// Package logs provides file tailing helpers for the CLI.
//
// It reads log files with bounded memory usage and powers follow-mode
// updates for `curator logs --follow`. Callers cancel the supplied context
// to stop background polling when the CLI exits.
package logs
