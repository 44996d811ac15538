// Package textutil provides label canonicalization helpers shared by the
// scoring engine and criteria evaluation.
//
// Genre, tag, keyword, and studio labels arrive from Emby and TMDB with
// inconsistent casing and spacing; canonicalization keeps set comparisons
// stable across both sources.
package textutil
