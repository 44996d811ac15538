// Package syncer orchestrates sync passes: it decodes each collection's
// embedded criteria, resolves enrichment, reconciles membership against
// the library, and records outcomes in history.
package syncer
