package reconcile_test

import (
	"testing"

	"curator/internal/criteria"
	"curator/internal/media"
	"curator/internal/reconcile"
	"curator/internal/scoring"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }
func int64p(v int64) *int64     { return &v }

func testScorer(t *testing.T) *scoring.Scorer {
	t.Helper()
	s, err := scoring.NewScorer(scoring.DefaultConfig())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	return s
}

func TestEmptyCriteriaMatchesEverything(t *testing.T) {
	s := testScorer(t)
	movies := []media.Movie{
		{ID: "1", Title: "Anything", Year: 2001},
		{ID: "2"},
		{ID: "3", Genres: []string{"Documentary"}, CommunityRating: floatp(9.9)},
	}
	for _, m := range movies {
		if !reconcile.Matches(m, nil, criteria.Criteria{}, s) {
			t.Errorf("empty criteria should match %q even without enrichment", m.ID)
		}
	}
}

func TestGenreSubsetSemantics(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{Genres: []string{"Horror", "Comedy"}}

	both := media.Movie{Genres: []string{"Comedy", "Horror", "Sci-Fi"}}
	if !reconcile.Matches(both, nil, c, s) {
		t.Fatal("superset of required genres should match")
	}
	one := media.Movie{Genres: []string{"Horror"}}
	if reconcile.Matches(one, nil, c, s) {
		t.Fatal("partial genre overlap must not match")
	}
}

func TestKeywordSubsetSemantics(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{Keywords: []string{"gore", "cult film"}}

	gore := &media.Enrichment{Keywords: []string{"gore"}}
	if reconcile.Matches(media.Movie{}, gore, c, s) {
		t.Fatal("movie with only one required keyword must not match")
	}
	all := &media.Enrichment{Keywords: []string{"gore", "cult film", "slasher"}}
	if !reconcile.Matches(media.Movie{}, all, c, s) {
		t.Fatal("movie with all required keywords should match")
	}
}

func TestYearAndRatingBoundsInclusive(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{
		MinYear:   intp(1980),
		MaxYear:   intp(1992),
		MinRating: floatp(4.0),
		MaxRating: floatp(6.5),
	}

	edge := media.Movie{Year: 1980, CommunityRating: floatp(4.0)}
	if !reconcile.Matches(edge, nil, c, s) {
		t.Fatal("lower edges are inclusive")
	}
	edge = media.Movie{Year: 1992, CommunityRating: floatp(6.5)}
	if !reconcile.Matches(edge, nil, c, s) {
		t.Fatal("upper edges are inclusive")
	}
	if reconcile.Matches(media.Movie{Year: 1993, CommunityRating: floatp(5.0)}, nil, c, s) {
		t.Fatal("year above bound must not match")
	}
	if reconcile.Matches(media.Movie{Year: 1985}, nil, c, s) {
		t.Fatal("movie without a rating must not satisfy a rating bound")
	}
	if reconcile.Matches(media.Movie{CommunityRating: floatp(5.0)}, nil, c, s) {
		t.Fatal("movie without a year must not satisfy a year bound")
	}
}

func TestAffinityFailClosed(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{MinAffinity: floatp(0.01)}

	m := media.Movie{ID: "1", Genres: []string{"Horror"}}
	if reconcile.Matches(m, nil, c, s) {
		t.Fatal("missing enrichment must fail a min-affinity constraint, even a tiny one")
	}

	e := &media.Enrichment{ProductionCompanies: []string{"Troma"}}
	if !reconcile.Matches(m, e, c, s) {
		t.Fatal("enriched movie above the bound should match")
	}
}

func TestLibraryConstraintsStillApplyWithoutEnrichment(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{Genres: []string{"Horror"}, MinYear: intp(1980)}

	m := media.Movie{Genres: []string{"Horror"}, Year: 1985}
	if !reconcile.Matches(m, nil, c, s) {
		t.Fatal("library-only criteria should match without enrichment")
	}
	m.Year = 1975
	if reconcile.Matches(m, nil, c, s) {
		t.Fatal("library constraint failure is unrelated to enrichment availability")
	}
}

func TestAffinityBoundUsesScore(t *testing.T) {
	s := testScorer(t)
	c := criteria.Criteria{MinAffinity: floatp(0.5)}

	strong := &media.Enrichment{
		Budget:              int64p(500_000),
		VoteAverage:         floatp(5.5),
		Keywords:            []string{"gore", "slasher", "campy"},
		ProductionCompanies: []string{"Troma"},
	}
	if !reconcile.Matches(media.Movie{}, strong, c, s) {
		t.Fatal("strong cult signals should clear a 0.5 bound")
	}

	weak := &media.Enrichment{VoteAverage: floatp(9.0), Budget: int64p(200_000_000)}
	if reconcile.Matches(media.Movie{}, weak, c, s) {
		t.Fatal("blockbuster signals should not clear a 0.5 bound")
	}
}
