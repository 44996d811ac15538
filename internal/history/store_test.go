package history_test

import (
	"context"
	"testing"
	"time"

	"curator/internal/history"
	"curator/internal/testsupport"
)

func TestBeginAndFinishRun(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run, err := store.BeginRun(ctx, history.TriggerManual)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID")
	}
	if run.Status != history.RunStatusRunning {
		t.Fatalf("unexpected status %s", run.Status)
	}

	run.Status = history.RunStatusCompleted
	run.CollectionsTotal = 3
	run.ItemsAdded = 5
	run.ItemsRemoved = 2
	if err := store.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun returned error: %v", err)
	}

	loaded, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun returned error: %v", err)
	}
	if loaded.Status != history.RunStatusCompleted {
		t.Fatalf("unexpected status %s", loaded.Status)
	}
	if loaded.FinishedAt == nil {
		t.Fatal("expected finished timestamp")
	}
	if loaded.CollectionsTotal != 3 || loaded.ItemsAdded != 5 || loaded.ItemsRemoved != 2 {
		t.Fatalf("unexpected totals %+v", loaded)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	_, err := store.GetRun(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestRecordCollectionUpserts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run, err := store.BeginRun(ctx, history.TriggerScheduled)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}

	first := history.CollectionResult{
		RunID:          run.ID,
		CollectionID:   "c1",
		CollectionName: "80s Horror",
		Status:         history.CollectionStatusFailed,
		ErrorMessage:   "emby write refused",
	}
	if err := store.RecordCollection(ctx, first); err != nil {
		t.Fatalf("RecordCollection returned error: %v", err)
	}

	second := first
	second.Status = history.CollectionStatusSynced
	second.Matched = 4
	second.Added = 2
	second.ErrorMessage = ""
	if err := store.RecordCollection(ctx, second); err != nil {
		t.Fatalf("RecordCollection upsert returned error: %v", err)
	}

	results, err := store.RunCollections(ctx, run.ID)
	if err != nil {
		t.Fatalf("RunCollections returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected single result, got %d", len(results))
	}
	if results[0].Status != history.CollectionStatusSynced || results[0].Matched != 4 {
		t.Fatalf("unexpected result %+v", results[0])
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := store.BeginRun(ctx, history.TriggerManual)
		if err != nil {
			t.Fatalf("BeginRun returned error: %v", err)
		}
		ids = append(ids, run.ID)
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("expected newest first, got %v then %v", runs[0].ID, runs[1].ID)
	}
}

func TestPruneRemovesOldRuns(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	run, err := store.BeginRun(ctx, history.TriggerManual)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}

	removed, err := store.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("fresh run should survive pruning, removed %d", removed)
	}

	removed, err = store.Prune(ctx, -time.Hour)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one pruned run, removed %d", removed)
	}
	if _, err := store.GetRun(ctx, run.ID); err == nil {
		t.Fatal("expected pruned run to be gone")
	}
}

func TestSchemaSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, history.TriggerManual)
	if err != nil {
		t.Fatalf("BeginRun returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetRun(ctx, run.ID); err != nil {
		t.Fatalf("expected run to survive reopen: %v", err)
	}
}
