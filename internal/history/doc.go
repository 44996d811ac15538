// Package history persists sync-run records in SQLite so that operators
// can review what each pass matched, added, and removed.
package history
