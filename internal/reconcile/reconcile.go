package reconcile

import (
	"curator/internal/criteria"
	"curator/internal/media"
	"curator/internal/scoring"
)

// Candidate pairs a library movie with its enrichment for one sync pass.
// Enrichment is nil when the metadata fetch failed or was not needed; the
// movie still participates in reconciliation either way.
type Candidate struct {
	Movie      media.Movie
	Enrichment *media.Enrichment
}

// Delta is the membership change a sync pass should apply. Add and Remove
// are disjoint by construction; neither carries an ordering guarantee.
type Delta struct {
	Add     []media.ItemID
	Remove  []media.ItemID
	Matched int
}

// Empty reports whether applying the delta would change nothing.
func (d Delta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// Reconcile evaluates every candidate against the criteria and computes the
// delta between the matched set and current membership. The result is
// independent of candidate order and idempotent: once membership equals the
// matched set, a second pass over identical inputs yields an empty delta.
func Reconcile(c criteria.Criteria, current []media.ItemID, candidates []Candidate, scorer *scoring.Scorer) Delta {
	matched := make(map[media.ItemID]struct{}, len(candidates))
	for _, cand := range candidates {
		if Matches(cand.Movie, cand.Enrichment, c, scorer) {
			matched[cand.Movie.ID] = struct{}{}
		}
	}

	currentSet := media.IDSet(current)

	var delta Delta
	delta.Matched = len(matched)
	for id := range matched {
		if _, ok := currentSet[id]; !ok {
			delta.Add = append(delta.Add, id)
		}
	}
	for id := range currentSet {
		if _, ok := matched[id]; !ok {
			delta.Remove = append(delta.Remove, id)
		}
	}
	return delta
}
