// Package reconcile contains the pure core of collection sync: criteria
// evaluation and membership reconciliation.
//
// Both operations are side-effect free over immutable per-pass snapshots.
// Enrichment failures degrade individual candidates (score- and
// keyword-based constraints fail closed) but never abort a pass; applying a
// delta and reconciling again over the same inputs yields an empty delta.
package reconcile
