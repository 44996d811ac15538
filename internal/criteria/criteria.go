package criteria

import (
	"fmt"
	"sort"
	"strings"
)

// Version is the criteria blob schema version written by this build.
const Version = 1

// Criteria is the declarative membership predicate for a synced collection.
// Every field is independently optional; an absent field imposes no
// constraint, and present constraints combine with logical AND.
//
// Genre, tag, and keyword constraints are subset tests: every listed label
// must be present on the movie (case-insensitively). Year and rating bounds
// are inclusive.
type Criteria struct {
	Genres      []string `json:"genres,omitempty"`
	MinYear     *int     `json:"min_year,omitempty"`
	MaxYear     *int     `json:"max_year,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
	MaxRating   *float64 `json:"max_rating,omitempty"`
	MinAffinity *float64 `json:"min_b_movie_score,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// IsEmpty reports whether no constraint is present. An empty criteria
// matches every movie; callers deciding whether to enable sync on a
// collection should treat it as "no rules configured".
func (c Criteria) IsEmpty() bool {
	return len(c.Genres) == 0 &&
		c.MinYear == nil && c.MaxYear == nil &&
		c.MinRating == nil && c.MaxRating == nil &&
		c.MinAffinity == nil &&
		len(c.Tags) == 0 && len(c.Keywords) == 0
}

// NeedsEnrichment reports whether evaluating this criteria requires TMDB
// data. Collections constrained only by library fields skip enrichment
// entirely.
func (c Criteria) NeedsEnrichment() bool {
	return c.MinAffinity != nil || len(c.Keywords) > 0
}

// Normalize trims label whitespace, drops empty labels, sorts label sets,
// and converts a zero minimum affinity to "no constraint". Encode
// normalizes before writing, so a decoded criteria always compares equal to
// the value that produced it.
func (c *Criteria) Normalize() {
	c.Genres = cleanLabels(c.Genres)
	c.Tags = cleanLabels(c.Tags)
	c.Keywords = cleanLabels(c.Keywords)
	if c.MinAffinity != nil && *c.MinAffinity == 0 {
		c.MinAffinity = nil
	}
}

// Validate rejects out-of-range and contradictory bounds. Violations are
// reported as invalid-value parse errors naming the offending field.
func (c Criteria) Validate() error {
	if c.MinYear != nil && *c.MinYear < 0 {
		return invalidValue("min_year", fmt.Sprintf("%d is negative", *c.MinYear))
	}
	if c.MaxYear != nil && *c.MaxYear < 0 {
		return invalidValue("max_year", fmt.Sprintf("%d is negative", *c.MaxYear))
	}
	if c.MinYear != nil && c.MaxYear != nil && *c.MinYear > *c.MaxYear {
		return invalidValue("min_year", fmt.Sprintf("%d exceeds max_year %d", *c.MinYear, *c.MaxYear))
	}
	if c.MinRating != nil && (*c.MinRating < 0 || *c.MinRating > 10) {
		return invalidValue("min_rating", fmt.Sprintf("%.2f outside [0,10]", *c.MinRating))
	}
	if c.MaxRating != nil && (*c.MaxRating < 0 || *c.MaxRating > 10) {
		return invalidValue("max_rating", fmt.Sprintf("%.2f outside [0,10]", *c.MaxRating))
	}
	if c.MinRating != nil && c.MaxRating != nil && *c.MinRating > *c.MaxRating {
		return invalidValue("min_rating", fmt.Sprintf("%.2f exceeds max_rating %.2f", *c.MinRating, *c.MaxRating))
	}
	if c.MinAffinity != nil && (*c.MinAffinity < 0 || *c.MinAffinity > 1) {
		return invalidValue("min_b_movie_score", fmt.Sprintf("%.2f outside [0,1]", *c.MinAffinity))
	}
	return nil
}

// Summary renders a short human-readable description of the active
// constraints for CLI and notification output.
func (c Criteria) Summary() string {
	var parts []string
	if len(c.Genres) > 0 {
		parts = append(parts, "genres "+strings.Join(c.Genres, "+"))
	}
	switch {
	case c.MinYear != nil && c.MaxYear != nil:
		parts = append(parts, fmt.Sprintf("years %d-%d", *c.MinYear, *c.MaxYear))
	case c.MinYear != nil:
		parts = append(parts, fmt.Sprintf("years %d+", *c.MinYear))
	case c.MaxYear != nil:
		parts = append(parts, fmt.Sprintf("years through %d", *c.MaxYear))
	}
	if c.MinRating != nil {
		parts = append(parts, fmt.Sprintf("rating >= %.1f", *c.MinRating))
	}
	if c.MaxRating != nil {
		parts = append(parts, fmt.Sprintf("rating <= %.1f", *c.MaxRating))
	}
	if c.MinAffinity != nil {
		parts = append(parts, fmt.Sprintf("b-movie score >= %.2f", *c.MinAffinity))
	}
	if len(c.Tags) > 0 {
		parts = append(parts, "tags "+strings.Join(c.Tags, "+"))
	}
	if len(c.Keywords) > 0 {
		parts = append(parts, "keywords "+strings.Join(c.Keywords, "+"))
	}
	if len(parts) == 0 {
		return "no constraints"
	}
	return strings.Join(parts, ", ")
}

func cleanLabels(labels []string) []string {
	cleaned := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		trimmed := strings.Join(strings.Fields(label), " ")
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return nil
	}
	sort.Strings(cleaned)
	return cleaned
}
