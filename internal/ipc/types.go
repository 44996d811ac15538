package ipc

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// RunInfo summarizes a recorded sync run for IPC callers.
type RunInfo struct {
	ID                string `json:"id"`
	Trigger           string `json:"trigger"`
	Status            string `json:"status"`
	StartedAt         string `json:"started_at"`
	FinishedAt        string `json:"finished_at,omitempty"`
	CollectionsTotal  int    `json:"collections_total"`
	CollectionsFailed int    `json:"collections_failed"`
	ItemsAdded        int    `json:"items_added"`
	ItemsRemoved      int    `json:"items_removed"`
	ErrorMessage      string `json:"error,omitempty"`
}

// CollectionResult summarizes one collection's outcome within a run.
type CollectionResult struct {
	CollectionID   string `json:"collection_id"`
	CollectionName string `json:"collection_name"`
	Status         string `json:"status"`
	Matched        int    `json:"matched"`
	Added          int    `json:"added"`
	Removed        int    `json:"removed"`
	ErrorMessage   string `json:"error,omitempty"`
}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running       bool     `json:"running"`
	PID           int      `json:"pid"`
	HistoryDBPath string   `json:"history_db_path"`
	LockPath      string   `json:"lock_path"`
	LastRun       *RunInfo `json:"last_run,omitempty"`
}

// SyncAllRequest triggers a sync pass over every collection.
type SyncAllRequest struct{}

// SyncCollectionRequest triggers a sync pass for a single collection.
type SyncCollectionRequest struct {
	CollectionID string `json:"collection_id"`
}

// SyncResponse reports the outcome of a sync pass.
type SyncResponse struct {
	RunID       string             `json:"run_id,omitempty"`
	Collections []CollectionResult `json:"collections"`
}

// HistoryRequest lists recent sync runs.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryResponse contains recent sync runs, newest first.
type HistoryResponse struct {
	Runs []RunInfo `json:"runs"`
}

// RunCollectionsRequest fetches per-collection results for a run.
type RunCollectionsRequest struct {
	RunID string `json:"run_id"`
}

// RunCollectionsResponse contains per-collection results.
type RunCollectionsResponse struct {
	Collections []CollectionResult `json:"collections"`
}

// CollectionInfo describes a library collection and its sync rules.
type CollectionInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HasCriteria bool   `json:"has_criteria"`
	Criteria    string `json:"criteria,omitempty"`
	ItemCount   int    `json:"item_count"`
}

// CollectionsRequest lists library collections.
type CollectionsRequest struct{}

// CollectionsResponse contains library collections.
type CollectionsResponse struct {
	Collections []CollectionInfo `json:"collections"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
