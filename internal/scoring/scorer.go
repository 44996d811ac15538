package scoring

import (
	"fmt"
	"math"

	"curator/internal/media"
	"curator/internal/textutil"
)

// Config holds the tunable weights and thresholds for the affinity score.
// The defaults are reference values, not invariants; the only hard rule is
// that the four weights sum to 1.0 so a movie hitting every signal at full
// strength scores exactly 1.0.
type Config struct {
	BudgetWeight  float64 `toml:"budget_weight"`
	RatingWeight  float64 `toml:"rating_weight"`
	KeywordWeight float64 `toml:"keyword_weight"`
	StudioWeight  float64 `toml:"studio_weight"`

	// BudgetCutoff is the production budget (USD) below which a movie
	// starts earning budget credit, scaling up as the budget approaches 0.
	BudgetCutoff int64 `toml:"budget_cutoff"`

	// RatingBandLow/High bound the vote-average band that earns full
	// rating credit; RatingMargin is the taper distance outside the band.
	RatingBandLow  float64 `toml:"rating_band_low"`
	RatingBandHigh float64 `toml:"rating_band_high"`
	RatingMargin   float64 `toml:"rating_margin"`

	// KeywordSaturation is the matched-keyword count at which the keyword
	// term reaches full credit.
	KeywordSaturation int `toml:"keyword_saturation"`

	// Keywords and Studios extend the built-in reference sets.
	Keywords []string `toml:"keywords"`
	Studios  []string `toml:"studios"`
}

// cultKeywords is the reference set of keyword labels that signal cult or
// b-movie sensibilities.
var cultKeywords = []string{
	"slasher",
	"gore",
	"b-movie",
	"campy",
	"cult film",
	"splatter film",
	"exploitation",
	"grindhouse",
	"video nasty",
	"low budget",
	"final girl",
	"scream queen",
}

// cultStudios is the reference set of production companies known for
// low-budget and cult output.
var cultStudios = []string{
	"Troma",
	"Full Moon Features",
	"The Asylum",
	"Cannon Films",
	"American International Pictures",
	"New World Pictures",
	"Crown International Pictures",
	"Empire Pictures",
	"PM Entertainment",
}

// DefaultConfig returns the reference scoring configuration.
func DefaultConfig() Config {
	return Config{
		BudgetWeight:      0.30,
		RatingWeight:      0.25,
		KeywordWeight:     0.30,
		StudioWeight:      0.15,
		BudgetCutoff:      5_000_000,
		RatingBandLow:     4.0,
		RatingBandHigh:    6.5,
		RatingMargin:      1.5,
		KeywordSaturation: 3,
	}
}

// Validate checks structural constraints on the configuration.
func (c Config) Validate() error {
	sum := c.BudgetWeight + c.RatingWeight + c.KeywordWeight + c.StudioWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", sum)
	}
	if c.BudgetWeight < 0 || c.RatingWeight < 0 || c.KeywordWeight < 0 || c.StudioWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.BudgetCutoff <= 0 {
		return fmt.Errorf("budget_cutoff must be positive, got %d", c.BudgetCutoff)
	}
	if c.RatingBandLow > c.RatingBandHigh {
		return fmt.Errorf("rating_band_low %.2f exceeds rating_band_high %.2f", c.RatingBandLow, c.RatingBandHigh)
	}
	if c.RatingMargin < 0 {
		return fmt.Errorf("rating_margin must be non-negative, got %.2f", c.RatingMargin)
	}
	if c.KeywordSaturation < 1 {
		return fmt.Errorf("keyword_saturation must be at least 1, got %d", c.KeywordSaturation)
	}
	return nil
}

// Scorer computes cult/b-movie affinity scores from enrichment data.
type Scorer struct {
	cfg      Config
	keywords map[string]struct{}
	studios  map[string]struct{}
}

// NewScorer builds a scorer from the supplied configuration. Configured
// keyword and studio labels extend the reference sets.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	keywords := textutil.CanonSet(cultKeywords)
	for label := range textutil.CanonSet(cfg.Keywords) {
		keywords[label] = struct{}{}
	}
	studios := textutil.CanonSet(cultStudios)
	for label := range textutil.CanonSet(cfg.Studios) {
		studios[label] = struct{}{}
	}
	return &Scorer{cfg: cfg, keywords: keywords, studios: studios}, nil
}

// Score maps enrichment data to an affinity value in [0,1]. The function is
// total: missing signals contribute zero to their term, and an enrichment
// with every field unknown scores 0.
func (s *Scorer) Score(e media.Enrichment) float64 {
	total := s.cfg.BudgetWeight*s.budgetTerm(e.Budget) +
		s.cfg.RatingWeight*s.ratingTerm(e.VoteAverage) +
		s.cfg.KeywordWeight*s.keywordTerm(e.Keywords) +
		s.cfg.StudioWeight*s.studioTerm(e.ProductionCompanies)
	return clamp01(total)
}

// budgetTerm rewards budgets below the cutoff, scaling linearly toward 1.0
// as the budget approaches zero. An unknown budget earns nothing: absence
// of data is not evidence of cheapness.
func (s *Scorer) budgetTerm(budget *int64) float64 {
	if budget == nil || *budget <= 0 {
		return 0
	}
	if *budget >= s.cfg.BudgetCutoff {
		return 0
	}
	return float64(s.cfg.BudgetCutoff-*budget) / float64(s.cfg.BudgetCutoff)
}

// ratingTerm gives full credit inside the mid-range band and tapers to zero
// over the configured margin on either side. Cult favorites are rarely
// critically acclaimed and rarely universally panned.
func (s *Scorer) ratingTerm(vote *float64) float64 {
	if vote == nil {
		return 0
	}
	v := *vote
	switch {
	case v >= s.cfg.RatingBandLow && v <= s.cfg.RatingBandHigh:
		return 1
	case s.cfg.RatingMargin == 0:
		return 0
	case v < s.cfg.RatingBandLow:
		return clamp01(1 - (s.cfg.RatingBandLow-v)/s.cfg.RatingMargin)
	default:
		return clamp01(1 - (v-s.cfg.RatingBandHigh)/s.cfg.RatingMargin)
	}
}

func (s *Scorer) keywordTerm(keywords []string) float64 {
	matched := 0
	for label := range textutil.CanonSet(keywords) {
		if _, ok := s.keywords[label]; ok {
			matched++
		}
	}
	if matched >= s.cfg.KeywordSaturation {
		return 1
	}
	return float64(matched) / float64(s.cfg.KeywordSaturation)
}

func (s *Scorer) studioTerm(companies []string) float64 {
	for label := range textutil.CanonSet(companies) {
		if _, ok := s.studios[label]; ok {
			return 1
		}
	}
	return 0
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
