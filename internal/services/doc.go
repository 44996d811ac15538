// Package services defines shared utilities consumed by the sync engine's
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp collection IDs and correlation identifiers
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper so failures classify
//     consistently (per-movie enrichment loss vs collection-level write
//     failures).
//
// Use these helpers when wiring new collaborator clients so error handling
// and observability stay uniform across the system.
package services
