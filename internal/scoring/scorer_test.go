package scoring_test

import (
	"math"
	"testing"

	"curator/internal/media"
	"curator/internal/scoring"
)

func newScorer(t *testing.T) *scoring.Scorer {
	t.Helper()
	s, err := scoring.NewScorer(scoring.DefaultConfig())
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}
	return s
}

func i64(v int64) *int64       { return &v }
func f64(v float64) *float64   { return &v }
func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScoreAllUnknownIsZero(t *testing.T) {
	s := newScorer(t)
	if got := s.Score(media.Enrichment{}); got != 0 {
		t.Fatalf("expected 0 for empty enrichment, got %v", got)
	}
}

func TestScoreStaysInUnitInterval(t *testing.T) {
	s := newScorer(t)
	enrichments := []media.Enrichment{
		{},
		{Budget: i64(1)},
		{Budget: i64(1), VoteAverage: f64(5.0)},
		{
			Budget:              i64(1),
			VoteAverage:         f64(5.0),
			Keywords:            []string{"gore", "slasher", "campy", "cult film", "grindhouse"},
			ProductionCompanies: []string{"Troma"},
		},
		{Budget: i64(900_000_000), VoteAverage: f64(9.8)},
	}
	for _, e := range enrichments {
		got := s.Score(e)
		if got < 0 || got > 1 {
			t.Errorf("score %v out of [0,1] for %+v", got, e)
		}
	}
}

func TestScoreMaximumIsExactlyOne(t *testing.T) {
	s := newScorer(t)
	e := media.Enrichment{
		Budget:              i64(1),
		VoteAverage:         f64(5.0),
		Keywords:            []string{"gore", "slasher", "campy"},
		ProductionCompanies: []string{"Troma"},
	}
	got := s.Score(e)
	// Budget of $1 against a $5M cutoff leaves the budget term a hair
	// under 1; allow for that sliver.
	if got < 0.999999 || got > 1 {
		t.Fatalf("expected near-exact 1.0 at full signal strength, got %v", got)
	}
}

func TestBudgetMonotonicity(t *testing.T) {
	s := newScorer(t)
	base := media.Enrichment{VoteAverage: f64(5.0)}

	prev := math.Inf(-1)
	for _, budget := range []int64{20_000_000, 5_000_000, 4_000_000, 1_000_000, 100_000, 1} {
		e := base
		e.Budget = i64(budget)
		got := s.Score(e)
		if got < prev {
			t.Fatalf("score decreased as budget dropped: budget=%d score=%v prev=%v", budget, got, prev)
		}
		if got < s.Score(base) {
			t.Fatalf("known budget %d scored below unknown budget", budget)
		}
		prev = got
	}
}

func TestBudgetUnknownNotRewarded(t *testing.T) {
	s := newScorer(t)
	unknown := s.Score(media.Enrichment{VoteAverage: f64(5.0)})
	cheap := s.Score(media.Enrichment{VoteAverage: f64(5.0), Budget: i64(50_000)})
	if unknown >= cheap {
		t.Fatalf("unknown budget (%v) should score below a known cheap budget (%v)", unknown, cheap)
	}
}

func TestRatingBandAndTaper(t *testing.T) {
	s := newScorer(t)
	score := func(v float64) float64 {
		return s.Score(media.Enrichment{VoteAverage: f64(v)})
	}

	w := scoring.DefaultConfig().RatingWeight
	if got := score(4.0); !almost(got, w) {
		t.Errorf("band low edge: got %v want %v", got, w)
	}
	if got := score(6.5); !almost(got, w) {
		t.Errorf("band high edge: got %v want %v", got, w)
	}
	if got := score(5.2); !almost(got, w) {
		t.Errorf("mid band: got %v want %v", got, w)
	}
	// Tapered on both sides, zero beyond the margin.
	if got := score(3.25); !almost(got, w*0.5) {
		t.Errorf("lower taper midpoint: got %v want %v", got, w*0.5)
	}
	if got := score(2.4); got != 0 {
		t.Errorf("below taper: got %v want 0", got)
	}
	if got := score(8.1); got != 0 {
		t.Errorf("above taper: got %v want 0", got)
	}
}

func TestKeywordSaturation(t *testing.T) {
	s := newScorer(t)
	w := scoring.DefaultConfig().KeywordWeight

	score := func(keywords ...string) float64 {
		return s.Score(media.Enrichment{Keywords: keywords})
	}

	if got := score("Gore"); !almost(got, w/3) {
		t.Errorf("one keyword: got %v want %v", got, w/3)
	}
	if got := score("gore", "slasher"); !almost(got, w*2/3) {
		t.Errorf("two keywords: got %v want %v", got, w*2/3)
	}
	if got := score("gore", "slasher", "campy"); !almost(got, w) {
		t.Errorf("saturated: got %v want %v", got, w)
	}
	if got := score("gore", "slasher", "campy", "grindhouse", "final girl"); !almost(got, w) {
		t.Errorf("beyond saturation should not exceed full term: got %v want %v", got, w)
	}
	if got := score("romance", "courtroom drama"); got != 0 {
		t.Errorf("non-cult keywords: got %v want 0", got)
	}
}

func TestStudioTermIsExactBonus(t *testing.T) {
	s := newScorer(t)
	w := scoring.DefaultConfig().StudioWeight

	e := media.Enrichment{ProductionCompanies: []string{"Troma"}}
	if got := s.Score(e); !almost(got, w) {
		t.Fatalf("studio-only enrichment: got %v want exactly %v", got, w)
	}

	e = media.Enrichment{ProductionCompanies: []string{"Warner Bros.", "the asylum"}}
	if got := s.Score(e); !almost(got, w) {
		t.Fatalf("case-folded studio match: got %v want %v", got, w)
	}

	e = media.Enrichment{ProductionCompanies: []string{"Warner Bros."}}
	if got := s.Score(e); got != 0 {
		t.Fatalf("major studio: got %v want 0", got)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := scoring.DefaultConfig()
	cfg.StudioWeight = 0.5
	if _, err := scoring.NewScorer(cfg); err == nil {
		t.Fatal("expected error when weights do not sum to 1")
	}

	cfg = scoring.DefaultConfig()
	cfg.BudgetCutoff = 0
	if _, err := scoring.NewScorer(cfg); err == nil {
		t.Fatal("expected error for zero budget cutoff")
	}

	cfg = scoring.DefaultConfig()
	cfg.KeywordSaturation = 0
	if _, err := scoring.NewScorer(cfg); err == nil {
		t.Fatal("expected error for zero keyword saturation")
	}
}

func TestConfiguredExtraSets(t *testing.T) {
	cfg := scoring.DefaultConfig()
	cfg.Studios = []string{"Vestron Pictures"}
	cfg.Keywords = []string{"ozploitation"}
	s, err := scoring.NewScorer(cfg)
	if err != nil {
		t.Fatalf("NewScorer failed: %v", err)
	}

	if got := s.Score(media.Enrichment{ProductionCompanies: []string{"vestron pictures"}}); !almost(got, cfg.StudioWeight) {
		t.Fatalf("configured studio not honored: got %v", got)
	}
	if got := s.Score(media.Enrichment{Keywords: []string{"Ozploitation"}}); !almost(got, cfg.KeywordWeight/3) {
		t.Fatalf("configured keyword not honored: got %v", got)
	}
}
