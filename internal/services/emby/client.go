package emby

import (
	"context"

	"curator/internal/media"
)

// Library defines the media server operations the sync engine needs. The
// HTTP-backed client below implements it against Emby's REST API; tests
// substitute fakes.
type Library interface {
	ListMovies(ctx context.Context) ([]media.Movie, error)
	ListCollections(ctx context.Context) ([]media.Collection, error)
	GetCollection(ctx context.Context, id media.ItemID) (*media.Collection, error)
	CollectionItems(ctx context.Context, id media.ItemID) ([]media.ItemID, error)
	CreateCollection(ctx context.Context, name string, ids []media.ItemID) (*media.Collection, error)
	DeleteCollection(ctx context.Context, id media.ItemID) error
	AddToCollection(ctx context.Context, id media.ItemID, items []media.ItemID) error
	RemoveFromCollection(ctx context.Context, id media.ItemID, items []media.ItemID) error
	UpdateOverview(ctx context.Context, id media.ItemID, overview string) error
}
