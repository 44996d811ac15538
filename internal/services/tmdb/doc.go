// Package tmdb provides a small TMDB API client used to enrich library
// movies with budget, vote, keyword, and production-company data.
package tmdb
