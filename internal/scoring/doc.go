// Package scoring computes the cult/b-movie affinity score used by
// score-based collection criteria.
//
// The score is a pure, deterministic function of TMDB enrichment data: a
// weighted sum of budget, vote-average, keyword, and studio terms, each
// normalized to [0,1] before weighting. Weights sum to 1.0 so the score is a
// true [0,1] scale. Weights and thresholds are product-tuning values exposed
// through Config rather than hard-coded law.
package scoring
