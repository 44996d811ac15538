package enrich

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/reconcile"
	"curator/internal/services"
	"curator/internal/services/tmdb"
)

const (
	defaultParallelism = 4
	defaultItemTimeout = 15 * time.Second
)

// Resolver turns library movies into reconcile candidates, attaching
// enrichment data fetched from TMDB. Results are cached for the lifetime
// of the resolver, so one resolver should serve exactly one sync pass.
type Resolver struct {
	enricher    tmdb.Enricher
	logger      *slog.Logger
	parallelism int
	itemTimeout time.Duration

	mu    sync.Mutex
	cache map[media.ItemID]*media.Enrichment
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithParallelism bounds the number of concurrent enrichment fetches.
func WithParallelism(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.parallelism = n
		}
	}
}

// WithItemTimeout bounds how long a single movie's enrichment may take.
func WithItemTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.itemTimeout = d
		}
	}
}

// NewResolver creates a resolver for a single sync pass.
func NewResolver(enricher tmdb.Enricher, logger *slog.Logger, opts ...Option) *Resolver {
	resolver := &Resolver{
		enricher:    enricher,
		logger:      logging.NewComponentLogger(logger, "enrich"),
		parallelism: defaultParallelism,
		itemTimeout: defaultItemTimeout,
		cache:       make(map[media.ItemID]*media.Enrichment),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Candidates builds reconcile candidates for the given movies. When
// needsEnrichment is false no TMDB calls are made and every candidate
// carries a nil enrichment. Enrichment failures are logged and leave the
// affected candidate without enrichment; they never fail the pass.
func (r *Resolver) Candidates(ctx context.Context, movies []media.Movie, needsEnrichment bool) []reconcile.Candidate {
	candidates := make([]reconcile.Candidate, len(movies))
	for i, movie := range movies {
		candidates[i] = reconcile.Candidate{Movie: movie}
	}
	if !needsEnrichment || r.enricher == nil {
		return candidates
	}

	sem := make(chan struct{}, r.parallelism)
	var wg sync.WaitGroup
	for i := range candidates {
		if candidates[i].Movie.TMDBID == "" && candidates[i].Movie.Title == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(c *reconcile.Candidate) {
			defer wg.Done()
			defer func() { <-sem }()
			c.Enrichment = r.resolve(ctx, c.Movie)
		}(&candidates[i])
	}
	wg.Wait()
	return candidates
}

func (r *Resolver) resolve(ctx context.Context, movie media.Movie) *media.Enrichment {
	r.mu.Lock()
	if cached, ok := r.cache[movie.ID]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	itemCtx, cancel := context.WithTimeout(ctx, r.itemTimeout)
	defer cancel()

	tmdbID := movie.TMDBID
	if tmdbID == "" {
		found, err := r.enricher.FindMovieID(itemCtx, movie.Title, movie.Year)
		if err != nil {
			r.logger.Warn("movie lookup failed", logging.Args(
				logging.String("title", movie.Title),
				logging.Int("year", movie.Year),
				logging.Error(services.Wrap(services.ErrEnrichmentUnavailable, "tmdb", "find_movie", "search movie by title", err)),
			)...)
		}
		if found == "" {
			r.mu.Lock()
			r.cache[movie.ID] = nil
			r.mu.Unlock()
			return nil
		}
		tmdbID = found
	}

	enrichment, err := r.enricher.MovieEnrichment(itemCtx, tmdbID)
	if err != nil {
		r.logger.Warn("movie enrichment failed", logging.Args(
			logging.String("title", movie.Title),
			logging.String("tmdb_id", tmdbID),
			logging.Error(services.Wrap(services.ErrEnrichmentUnavailable, "tmdb", "movie_enrichment", "fetch movie details", err)),
		)...)
		enrichment = nil
	}

	r.mu.Lock()
	r.cache[movie.ID] = enrichment
	r.mu.Unlock()
	return enrichment
}
