package history

import "time"

// RunStatus represents the lifecycle of a sync run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusDegraded  RunStatus = "degraded"
	RunStatusFailed    RunStatus = "failed"
)

// Trigger identifies what started a sync run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// Run is a recorded sync pass over one or more collections.
type Run struct {
	ID                string
	Trigger           Trigger
	Status            RunStatus
	StartedAt         time.Time
	FinishedAt        *time.Time
	CollectionsTotal  int
	CollectionsFailed int
	ItemsAdded        int
	ItemsRemoved      int
	ErrorMessage      string
}

// CollectionStatus is the per-collection outcome within a run.
type CollectionStatus string

const (
	CollectionStatusSynced   CollectionStatus = "synced"
	CollectionStatusSkipped  CollectionStatus = "skipped"
	CollectionStatusDegraded CollectionStatus = "degraded"
	CollectionStatusFailed   CollectionStatus = "failed"
)

// CollectionResult records what a run did to a single collection.
type CollectionResult struct {
	RunID          string
	CollectionID   string
	CollectionName string
	Status         CollectionStatus
	Matched        int
	Added          int
	Removed        int
	ErrorMessage   string
}

// Failed reports whether the run ended without completing every collection.
func (r Run) Failed() bool {
	return r.Status == RunStatusFailed
}

// Duration returns the run's wall time, or zero while still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
