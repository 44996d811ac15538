package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"curator/internal/config"
	"curator/internal/criteria"
	"curator/internal/history"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/syncer"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

type statusPayload struct {
	Running       bool        `json:"running"`
	PID           int         `json:"pid"`
	HistoryDBPath string      `json:"history_db_path"`
	LockFilePath  string      `json:"lock_file_path"`
	LastRun       *runPayload `json:"last_run,omitempty"`
}

type runPayload struct {
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

type collectionPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HasCriteria bool   `json:"has_criteria"`
	Criteria    string `json:"criteria,omitempty"`
	ItemCount   int    `json:"item_count"`
}

type syncResponse struct {
	RunID       string                    `json:"run_id,omitempty"`
	Collections []collectionResultPayload `json:"collections"`
}

type collectionResultPayload struct {
	CollectionID   string `json:"collection_id"`
	CollectionName string `json:"collection_name"`
	Status         string `json:"status"`
	Matched        int    `json:"matched"`
	Added          int    `json:"added"`
	Removed        int    `json:"removed"`
	ErrorMessage   string `json:"error,omitempty"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/history", srv.handleHistory)
	mux.HandleFunc("/api/history/", srv.handleHistoryRun)
	mux.HandleFunc("/api/sync", srv.handleSync)
	mux.HandleFunc("/api/collections", srv.handleCollections)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Args(logging.Error(err))...)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.Args(logging.String("address", listener.Addr().String()))...)
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := statusPayload{
		Running:       status.Running,
		PID:           status.PID,
		HistoryDBPath: status.HistoryDBPath,
		LockFilePath:  status.LockFilePath,
	}
	if status.LastRun != nil {
		payload.LastRun = convertRun(status.LastRun)
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.daemon.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]*runPayload, 0, len(runs))
	for _, run := range runs {
		payload = append(payload, convertRun(run))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": payload})
}

func (s *apiServer) handleHistoryRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	runID := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if runID == "" || strings.Contains(runID, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	results, err := s.daemon.RunCollections(r.Context(), runID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]collectionResultPayload, 0, len(results))
	for _, result := range results {
		payload = append(payload, convertResult(result))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"collections": payload})
}

func (s *apiServer) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	collectionID := strings.TrimSpace(r.URL.Query().Get("collection"))

	var (
		outcome *syncer.Outcome
		err     error
	)
	if collectionID == "" {
		outcome, err = s.daemon.SyncAll(r.Context(), history.TriggerManual)
	} else {
		outcome, err = s.daemon.SyncCollection(r.Context(), history.TriggerManual, media.ItemID(collectionID))
	}
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := syncResponse{}
	if outcome.Run != nil {
		resp.RunID = outcome.Run.ID
	}
	for _, result := range outcome.Collections {
		resp.Collections = append(resp.Collections, convertResult(result))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleCollections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	collections, err := s.daemon.Collections(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	payload := make([]collectionPayload, 0, len(collections))
	for _, collection := range collections {
		entry := collectionPayload{
			ID:        string(collection.ID),
			Name:      collection.Name,
			ItemCount: len(collection.ItemIDs),
		}
		if parsed, err := criteria.Decode(collection.Overview); err == nil && parsed != nil {
			entry.HasCriteria = true
			entry.Criteria = parsed.Summary()
		}
		payload = append(payload, entry)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"collections": payload})
}

func convertRun(run *history.Run) *runPayload {
	payload := &runPayload{
		ID:                run.ID,
		Trigger:           string(run.Trigger),
		Status:            string(run.Status),
		StartedAt:         run.StartedAt.UTC().Format(time.RFC3339),
		CollectionsTotal:  run.CollectionsTotal,
		CollectionsFailed: run.CollectionsFailed,
		ItemsAdded:        run.ItemsAdded,
		ItemsRemoved:      run.ItemsRemoved,
		ErrorMessage:      run.ErrorMessage,
	}
	if run.FinishedAt != nil {
		payload.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return payload
}

func convertResult(result history.CollectionResult) collectionResultPayload {
	return collectionResultPayload{
		CollectionID:   result.CollectionID,
		CollectionName: result.CollectionName,
		Status:         string(result.Status),
		Matched:        result.Matched,
		Added:          result.Added,
		Removed:        result.Removed,
		ErrorMessage:   result.ErrorMessage,
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Args(logging.Error(err))...)
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}
