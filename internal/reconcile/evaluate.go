package reconcile

import (
	"curator/internal/criteria"
	"curator/internal/media"
	"curator/internal/scoring"
	"curator/internal/textutil"
)

// Matches evaluates a movie against a criteria. Absent constraint fields are
// vacuously true, so an empty criteria matches everything.
//
// Enrichment may be nil when the metadata fetch failed; constraints that
// depend on it (minimum affinity, required keywords) then fail closed while
// library-backed constraints still evaluate normally.
func Matches(m media.Movie, e *media.Enrichment, c criteria.Criteria, scorer *scoring.Scorer) bool {
	if len(c.Genres) > 0 && !textutil.ContainsAll(textutil.CanonSet(m.Genres), c.Genres) {
		return false
	}
	if c.MinYear != nil && (m.Year == 0 || m.Year < *c.MinYear) {
		return false
	}
	if c.MaxYear != nil && (m.Year == 0 || m.Year > *c.MaxYear) {
		return false
	}
	if c.MinRating != nil && (m.CommunityRating == nil || *m.CommunityRating < *c.MinRating) {
		return false
	}
	if c.MaxRating != nil && (m.CommunityRating == nil || *m.CommunityRating > *c.MaxRating) {
		return false
	}
	if len(c.Tags) > 0 && !textutil.ContainsAll(textutil.CanonSet(m.Tags), c.Tags) {
		return false
	}
	if len(c.Keywords) > 0 {
		if e == nil {
			return false
		}
		if !textutil.ContainsAll(textutil.CanonSet(e.Keywords), c.Keywords) {
			return false
		}
	}
	if c.MinAffinity != nil {
		if e == nil || scorer == nil {
			return false
		}
		if scorer.Score(*e) < *c.MinAffinity {
			return false
		}
	}
	return true
}
