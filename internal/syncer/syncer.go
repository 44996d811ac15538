package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"curator/internal/config"
	"curator/internal/criteria"
	"curator/internal/enrich"
	"curator/internal/history"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/notifications"
	"curator/internal/reconcile"
	"curator/internal/scoring"
	"curator/internal/services"
	"curator/internal/services/emby"
	"curator/internal/services/tmdb"
)

// Outcome reports what a sync pass did.
type Outcome struct {
	Run         *history.Run
	Collections []history.CollectionResult
}

// Syncer reconciles collection membership against embedded criteria.
type Syncer struct {
	cfg      *config.Config
	library  emby.Library
	enricher tmdb.Enricher
	store    *history.Store
	notifier notifications.Service
	scorer   *scoring.Scorer
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[media.ItemID]*sync.Mutex
}

// New constructs a Syncer. The history store and notifier are optional;
// sync passes proceed without recording or notifying when they are nil.
func New(cfg *config.Config, library emby.Library, enricher tmdb.Enricher, store *history.Store, notifier notifications.Service, logger *slog.Logger) (*Syncer, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if library == nil {
		return nil, errors.New("library must not be nil")
	}
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	return &Syncer{
		cfg:      cfg,
		library:  library,
		enricher: enricher,
		store:    store,
		notifier: notifier,
		scorer:   scorer,
		logger:   logging.NewComponentLogger(logger, "syncer"),
		locks:    make(map[media.ItemID]*sync.Mutex),
	}, nil
}

// SyncAll reconciles every collection in the library in one pass. Library
// movies are listed once and enrichment lookups are shared across
// collections. Per-collection failures are recorded and do not abort the
// pass.
func (s *Syncer) SyncAll(ctx context.Context, trigger history.Trigger) (*Outcome, error) {
	collections, err := s.library.ListCollections(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "syncer", "sync_all", "list collections", err)
	}
	return s.syncPass(ctx, trigger, collections)
}

// SyncCollection reconciles a single collection as its own run.
func (s *Syncer) SyncCollection(ctx context.Context, trigger history.Trigger, id media.ItemID) (*Outcome, error) {
	collection, err := s.library.GetCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.syncPass(ctx, trigger, []media.Collection{*collection})
}

func (s *Syncer) syncPass(ctx context.Context, trigger history.Trigger, collections []media.Collection) (*Outcome, error) {
	started := time.Now()

	run, err := s.beginRun(ctx, trigger)
	if err != nil {
		return nil, err
	}
	if run != nil {
		ctx = services.WithRunID(ctx, run.ID)
	}

	if s.notifier != nil {
		_ = s.notifier.NotifySyncStarted(ctx, len(collections))
	}

	movies, err := s.library.ListMovies(ctx)
	if err != nil {
		wrapped := services.Wrap(services.ErrTransient, "syncer", "sync_pass", "list library movies", err)
		s.failRun(ctx, run, wrapped)
		return nil, wrapped
	}

	resolver := enrich.NewResolver(s.enricher, s.logger,
		enrich.WithParallelism(s.cfg.Sync.Parallelism),
		enrich.WithItemTimeout(time.Duration(s.cfg.Sync.ItemTimeoutSeconds)*time.Second))

	workers := s.cfg.Sync.CollectionParallelism
	if workers <= 0 {
		workers = 1
	}
	results := make([]history.CollectionResult, len(collections))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range collections {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.syncOne(ctx, resolver, collections[i], movies)
		}(i)
	}
	wg.Wait()

	outcome := &Outcome{Run: run}
	for i := range results {
		if run != nil {
			results[i].RunID = run.ID
			if err := s.store.RecordCollection(ctx, results[i]); err != nil {
				s.logger.Warn("record collection result", logging.Args(
					logging.String(logging.FieldCollectionID, results[i].CollectionID),
					logging.Error(err),
				)...)
			}
		}
		outcome.Collections = append(outcome.Collections, results[i])
	}

	var added, removed, failed, synced int
	for _, result := range outcome.Collections {
		added += result.Added
		removed += result.Removed
		switch result.Status {
		case history.CollectionStatusFailed:
			failed++
		case history.CollectionStatusSynced, history.CollectionStatusDegraded:
			synced++
		}
	}

	if run != nil {
		run.CollectionsTotal = len(outcome.Collections)
		run.CollectionsFailed = failed
		run.ItemsAdded = added
		run.ItemsRemoved = removed
		run.Status = history.RunStatusCompleted
		if failed > 0 {
			run.Status = history.RunStatusDegraded
		}
		if err := s.store.FinishRun(ctx, run); err != nil {
			s.logger.Warn("finish sync run", logging.Args(logging.Error(err))...)
		}
	}

	if s.notifier != nil {
		_ = s.notifier.NotifySyncCompleted(ctx, synced, added, removed, failed, time.Since(started))
	}

	s.logger.Info("sync pass finished", logging.Args(
		logging.Int("collections", len(outcome.Collections)),
		logging.Int("added", added),
		logging.Int("removed", removed),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)...)

	return outcome, nil
}

func (s *Syncer) beginRun(ctx context.Context, trigger history.Trigger) (*history.Run, error) {
	if s.store == nil {
		return nil, nil
	}
	run, err := s.store.BeginRun(ctx, trigger)
	if err != nil {
		return nil, fmt.Errorf("begin sync run: %w", err)
	}
	return run, nil
}

func (s *Syncer) failRun(ctx context.Context, run *history.Run, cause error) {
	if run == nil {
		return
	}
	run.Status = history.RunStatusFailed
	run.ErrorMessage = cause.Error()
	if err := s.store.FinishRun(ctx, run); err != nil {
		s.logger.Warn("finish failed sync run", logging.Args(logging.Error(err))...)
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyError(ctx, cause, "sync")
	}
}

// syncOne reconciles a single collection. A missing or empty criteria
// marker skips the collection; a malformed marker fails it without
// touching membership.
func (s *Syncer) syncOne(ctx context.Context, resolver *enrich.Resolver, collection media.Collection, movies []media.Movie) history.CollectionResult {
	result := history.CollectionResult{
		CollectionID:   string(collection.ID),
		CollectionName: collection.Name,
	}
	ctx = services.WithCollectionID(ctx, string(collection.ID))
	logger := logging.WithContext(ctx, s.logger)

	unlock := s.lockCollection(collection.ID)
	defer unlock()

	parsed, err := criteria.Decode(collection.Overview)
	if err != nil {
		result.Status = history.CollectionStatusFailed
		result.ErrorMessage = fmt.Sprintf("parse criteria: %v", err)
		logger.Error("criteria parse failed", logging.Args(logging.Error(err))...)
		return result
	}
	if parsed == nil || parsed.IsEmpty() {
		result.Status = history.CollectionStatusSkipped
		logger.Debug("collection has no sync criteria, skipping")
		return result
	}

	candidates := resolver.Candidates(ctx, movies, parsed.NeedsEnrichment())

	current, err := s.library.CollectionItems(ctx, collection.ID)
	if err != nil {
		result.Status = history.CollectionStatusFailed
		result.ErrorMessage = fmt.Sprintf("list collection items: %v", err)
		logger.Error("collection membership fetch failed", logging.Args(logging.Error(err))...)
		return result
	}

	delta := reconcile.Reconcile(*parsed, current, candidates, s.scorer)
	result.Matched = delta.Matched

	if len(delta.Add) > 0 {
		if err := s.library.AddToCollection(ctx, collection.ID, delta.Add); err != nil {
			result.Status = history.CollectionStatusFailed
			result.ErrorMessage = fmt.Sprintf("add items: %v", err)
			logger.Error("collection add failed", logging.Args(logging.Error(err))...)
			return result
		}
		result.Added = len(delta.Add)
	}
	if len(delta.Remove) > 0 {
		if err := s.library.RemoveFromCollection(ctx, collection.ID, delta.Remove); err != nil {
			result.Status = history.CollectionStatusFailed
			result.ErrorMessage = fmt.Sprintf("remove items: %v", err)
			logger.Error("collection remove failed", logging.Args(logging.Error(err))...)
			return result
		}
		result.Removed = len(delta.Remove)
	}

	result.Status = history.CollectionStatusSynced
	if parsed.NeedsEnrichment() && enrichmentIncomplete(candidates) {
		result.Status = history.CollectionStatusDegraded
	}

	logger.Info("collection reconciled", logging.Args(
		logging.Int("matched", result.Matched),
		logging.Int("added", result.Added),
		logging.Int("removed", result.Removed),
		logging.String("status", string(result.Status)),
	)...)
	return result
}

func (s *Syncer) lockCollection(id media.ItemID) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func enrichmentIncomplete(candidates []reconcile.Candidate) bool {
	for _, candidate := range candidates {
		if candidate.Movie.TMDBID != "" && candidate.Enrichment == nil {
			return true
		}
	}
	return false
}
