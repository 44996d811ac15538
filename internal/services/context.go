package services

import "context"

type contextKey string

const (
	collectionIDKey contextKey = "collection_id"
	runIDKey        contextKey = "run_id"
)

// WithCollectionID annotates context with the collection being synced.
func WithCollectionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, collectionIDKey, id)
}

// CollectionIDFromContext extracts the collection identifier if present.
func CollectionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(collectionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the sync run correlation identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sync run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
