package main

import (
	"fmt"

	"log/slog"

	"curator/internal/config"
	"curator/internal/history"
	"curator/internal/notifications"
	"curator/internal/services/emby"
	"curator/internal/services/tmdb"
	"curator/internal/syncer"
)

// buildSyncer wires the history store and the Emby and TMDB clients into a
// syncer. The store stays open for the daemon's lifetime; the caller owns it
// through daemon.Close.
func buildSyncer(cfg *config.Config, logger *slog.Logger) (*history.Store, *syncer.Syncer, notifications.Service, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open history store: %w", err)
	}

	library, err := emby.NewClient(cfg.Emby.URL, cfg.Emby.APIKey)
	if err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("emby client: %w", err)
	}

	enricher, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("tmdb client: %w", err)
	}

	notifier := notifications.NewService(cfg)

	s, err := syncer.New(cfg, library, enricher, store, notifier, logger)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}
	return store, s, notifier, nil
}
