// Package media defines the shared library and enrichment snapshot types.
//
// All values are treated as immutable for the duration of a sync pass:
// clients produce fresh snapshots per pass and the reconciler never writes
// back into them.
package media
