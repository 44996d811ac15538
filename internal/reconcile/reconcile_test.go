package reconcile_test

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"curator/internal/criteria"
	"curator/internal/media"
	"curator/internal/reconcile"
)

func sortedIDs(ids []media.ItemID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	sort.Strings(out)
	return out
}

func TestReconcileEndToEnd(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{
		Genres:      []string{"Horror"},
		MinYear:     intp(1980),
		MaxYear:     intp(1992),
		MinAffinity: floatp(0.5),
	}

	// Movie A scores well above 0.5; movie B carries no cult signals
	// beyond a mid rating and lands below it.
	a := reconcile.Candidate{
		Movie: media.Movie{ID: "A", Genres: []string{"Horror"}, Year: 1981},
		Enrichment: &media.Enrichment{
			Budget:      int64p(800_000),
			VoteAverage: floatp(5.0),
			Keywords:    []string{"slasher", "gore", "final girl"},
		},
	}
	b := reconcile.Candidate{
		Movie:      media.Movie{ID: "B", Genres: []string{"Horror"}, Year: 1981},
		Enrichment: &media.Enrichment{VoteAverage: floatp(5.5)},
	}

	delta := reconcile.Reconcile(c, []media.ItemID{"B"}, []reconcile.Candidate{a, b}, s)

	if got := sortedIDs(delta.Add); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("add set = %v, want [A]", got)
	}
	if got := sortedIDs(delta.Remove); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("remove set = %v, want [B]", got)
	}
	if delta.Matched != 1 {
		t.Fatalf("matched = %d, want 1", delta.Matched)
	}
}

func TestReconcileDisjointAndIdempotent(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{Genres: []string{"Horror"}}

	candidates := []reconcile.Candidate{
		{Movie: media.Movie{ID: "1", Genres: []string{"Horror"}}},
		{Movie: media.Movie{ID: "2", Genres: []string{"Comedy"}}},
		{Movie: media.Movie{ID: "3", Genres: []string{"Horror", "Comedy"}}},
		{Movie: media.Movie{ID: "4"}},
	}
	current := []media.ItemID{"2", "3"}

	delta := reconcile.Reconcile(c, current, candidates, s)

	seen := media.IDSet(delta.Add)
	for _, id := range delta.Remove {
		if _, ok := seen[id]; ok {
			t.Fatalf("id %s present in both add and remove", id)
		}
	}

	// Apply the delta: membership becomes exactly the matched set.
	next := []media.ItemID{"1", "3"}
	again := reconcile.Reconcile(c, next, candidates, s)
	if !again.Empty() {
		t.Fatalf("expected empty delta after applying previous delta, got %+v", again)
	}
}

func TestReconcileOrderIndependent(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{MinYear: intp(1990)}

	candidates := make([]reconcile.Candidate, 0, 20)
	for i := 0; i < 20; i++ {
		candidates = append(candidates, reconcile.Candidate{
			Movie: media.Movie{ID: media.ItemID(rune('a' + i)), Year: 1980 + i},
		})
	}
	current := []media.ItemID{"a", "b", "p", "q"}

	baseline := reconcile.Reconcile(c, current, candidates, s)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]reconcile.Candidate, len(candidates))
		copy(shuffled, candidates)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := reconcile.Reconcile(c, current, shuffled, s)
		if !reflect.DeepEqual(sortedIDs(got.Add), sortedIDs(baseline.Add)) ||
			!reflect.DeepEqual(sortedIDs(got.Remove), sortedIDs(baseline.Remove)) {
			t.Fatalf("trial %d: delta depends on candidate order", trial)
		}
	}
}

func TestReconcileFailedEnrichmentStillParticipates(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{MinAffinity: floatp(0.2)}

	// "stale" is currently a member but its enrichment fetch failed this
	// pass: fail-closed means it is removed, not silently kept.
	candidates := []reconcile.Candidate{
		{Movie: media.Movie{ID: "stale"}},
		{
			Movie:      media.Movie{ID: "fresh"},
			Enrichment: &media.Enrichment{ProductionCompanies: []string{"Full Moon Features"}, Keywords: []string{"campy"}},
		},
	}

	delta := reconcile.Reconcile(c, []media.ItemID{"stale"}, candidates, s)
	if got := sortedIDs(delta.Remove); !reflect.DeepEqual(got, []string{"stale"}) {
		t.Fatalf("remove = %v, want [stale]", got)
	}
	if got := sortedIDs(delta.Add); !reflect.DeepEqual(got, []string{"fresh"}) {
		t.Fatalf("add = %v, want [fresh]", got)
	}
}

func TestReconcileEmptyCriteriaNeverRemoves(t *testing.T) {
	s := testScorer(t)

	candidates := []reconcile.Candidate{
		{Movie: media.Movie{ID: "1"}},
		{Movie: media.Movie{ID: "2"}},
	}
	delta := reconcile.Reconcile(criteria.Criteria{}, []media.ItemID{"1"}, candidates, s)
	if len(delta.Remove) != 0 {
		t.Fatalf("empty criteria removed members: %v", delta.Remove)
	}
	if got := sortedIDs(delta.Add); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("add = %v, want [2]", got)
	}
}
