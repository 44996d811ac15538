// Package enrich resolves per-movie enrichment data for a single sync
// pass, caching lookups so that each movie is fetched at most once even
// when many collections reference it.
package enrich
