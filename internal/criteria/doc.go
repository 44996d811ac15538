// Package criteria defines the declarative collection membership predicate
// and its overview-text persistence format.
//
// Criteria live entirely inside the media server: they are serialized into a
// marker-delimited JSON blob embedded in the collection's overview text, so
// the core owns no persistent state of its own. The record is closed and
// versioned; unknown fields and out-of-range values are rejected at decode
// time rather than surfacing later during evaluation.
package criteria
