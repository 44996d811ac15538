package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var folder = cases.Fold()

// CanonLabel normalizes a genre, tag, keyword, or studio label for
// comparison: surrounding whitespace is removed, interior runs of
// whitespace collapse to a single space, and the result is case-folded.
func CanonLabel(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return folder.String(strings.Join(fields, " "))
}

// CanonSet builds a lookup set of canonicalized labels. Empty labels are
// dropped.
func CanonSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		canon := CanonLabel(label)
		if canon == "" {
			continue
		}
		set[canon] = struct{}{}
	}
	return set
}

// ContainsAll reports whether every canonicalized required label appears in
// the candidate set. Required labels that canonicalize to empty are ignored.
func ContainsAll(have map[string]struct{}, required []string) bool {
	for _, label := range required {
		canon := CanonLabel(label)
		if canon == "" {
			continue
		}
		if _, ok := have[canon]; !ok {
			return false
		}
	}
	return true
}

// DisplayTitle renders a user-supplied name in title case for presentation,
// e.g. when creating a collection from a CLI argument.
func DisplayTitle(name string) string {
	trimmed := strings.Join(strings.Fields(name), " ")
	if trimmed == "" {
		return ""
	}
	return cases.Title(language.Und).String(trimmed)
}
