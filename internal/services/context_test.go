package services_test

import (
	"context"
	"testing"

	"curator/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCollectionID(ctx, "77")
	ctx = services.WithRunID(ctx, "run-123")

	if id, ok := services.CollectionIDFromContext(ctx); !ok || id != "77" {
		t.Fatalf("unexpected collection id: %v %v", id, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCollectionID(ctx, "")
	if _, ok := services.CollectionIDFromContext(ctx); ok {
		t.Fatal("expected no collection id value")
	}
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
