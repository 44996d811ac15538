package syncer

import (
	"context"
	"fmt"
	"strings"

	"curator/internal/criteria"
	"curator/internal/logging"
	"curator/internal/media"
)

// GetCriteria returns the collection and its decoded criteria, or a nil
// criteria when the overview carries no marker.
func (s *Syncer) GetCriteria(ctx context.Context, id media.ItemID) (*media.Collection, *criteria.Criteria, error) {
	collection, err := s.library.GetCollection(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := criteria.Decode(collection.Overview)
	if err != nil {
		return collection, nil, err
	}
	return collection, parsed, nil
}

// SetCriteria embeds criteria into the collection's overview, replacing any
// existing marker and preserving surrounding prose.
func (s *Syncer) SetCriteria(ctx context.Context, id media.ItemID, c criteria.Criteria) error {
	collection, err := s.library.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	overview, err := criteria.Embed(collection.Overview, c)
	if err != nil {
		return fmt.Errorf("embed criteria: %w", err)
	}
	if err := s.library.UpdateOverview(ctx, id, overview); err != nil {
		return err
	}
	s.logger.Info("criteria updated", logging.Args(
		logging.String(logging.FieldCollectionID, string(id)),
		logging.String("criteria", c.Summary()),
	)...)
	return nil
}

// ClearCriteria removes the criteria marker from the collection's overview.
// Prose outside the marker is kept.
func (s *Syncer) ClearCriteria(ctx context.Context, id media.ItemID) error {
	collection, err := s.library.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	stripped := criteria.Strip(collection.Overview)
	if stripped == collection.Overview {
		return nil
	}
	if err := s.library.UpdateOverview(ctx, id, stripped); err != nil {
		return err
	}
	s.logger.Info("criteria cleared", logging.Args(
		logging.String(logging.FieldCollectionID, string(id)),
	)...)
	return nil
}

// CreateCollection creates an empty collection and, when criteria are
// given, embeds them so the next sync pass populates membership.
func (s *Syncer) CreateCollection(ctx context.Context, name string, c *criteria.Criteria) (*media.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("collection name must not be empty")
	}
	collection, err := s.library.CreateCollection(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	if c != nil {
		if err := s.SetCriteria(ctx, collection.ID, *c); err != nil {
			return collection, fmt.Errorf("set criteria on new collection: %w", err)
		}
	}
	s.logger.Info("collection created", logging.Args(
		logging.String(logging.FieldCollectionID, string(collection.ID)),
		logging.String("name", name),
	)...)
	return collection, nil
}

// DeleteCollection removes a collection from the library. Movies are not
// touched.
func (s *Syncer) DeleteCollection(ctx context.Context, id media.ItemID) error {
	if err := s.library.DeleteCollection(ctx, id); err != nil {
		return err
	}
	s.logger.Info("collection deleted", logging.Args(
		logging.String(logging.FieldCollectionID, string(id)),
	)...)
	return nil
}

// ListCollections returns the library's collections with their decode
// status so callers can present which ones carry criteria.
func (s *Syncer) ListCollections(ctx context.Context) ([]media.Collection, error) {
	return s.library.ListCollections(ctx)
}
