package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"curator/internal/criteria"
	"curator/internal/daemon"
	"curator/internal/history"
	"curator/internal/logging"
	"curator/internal/media"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Curator", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String("socket", s.path))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func convertRun(run *history.Run) *RunInfo {
	if run == nil {
		return nil
	}
	info := &RunInfo{
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
		info.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return info
}

func convertResult(result history.CollectionResult) CollectionResult {
	return CollectionResult{
		CollectionID:   result.CollectionID,
		CollectionName: result.CollectionName,
		Status:         string(result.Status),
		Matched:        result.Matched,
		Added:          result.Added,
		Removed:        result.Removed,
		ErrorMessage:   result.ErrorMessage,
	}
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.HistoryDBPath = status.HistoryDBPath
	resp.LockPath = status.LockFilePath
	resp.LastRun = convertRun(status.LastRun)
	return nil
}

func (s *service) SyncAll(_ SyncAllRequest, resp *SyncResponse) error {
	s.log().Debug("sync all requested")
	outcome, err := s.daemon.SyncAll(s.ctx, history.TriggerManual)
	if err != nil {
		return err
	}
	if outcome.Run != nil {
		resp.RunID = outcome.Run.ID
	}
	for _, result := range outcome.Collections {
		resp.Collections = append(resp.Collections, convertResult(result))
	}
	return nil
}

func (s *service) SyncCollection(req SyncCollectionRequest, resp *SyncResponse) error {
	if req.CollectionID == "" {
		return errors.New("sync collection requires a collection id")
	}
	s.log().Debug("sync collection requested", logging.String("collection_id", req.CollectionID))
	outcome, err := s.daemon.SyncCollection(s.ctx, history.TriggerManual, media.ItemID(req.CollectionID))
	if err != nil {
		return err
	}
	if outcome.Run != nil {
		resp.RunID = outcome.Run.ID
	}
	for _, result := range outcome.Collections {
		resp.Collections = append(resp.Collections, convertResult(result))
	}
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	runs, err := s.daemon.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Runs = make([]RunInfo, 0, len(runs))
	for _, run := range runs {
		if info := convertRun(run); info != nil {
			resp.Runs = append(resp.Runs, *info)
		}
	}
	return nil
}

func (s *service) RunCollections(req RunCollectionsRequest, resp *RunCollectionsResponse) error {
	if req.RunID == "" {
		return errors.New("run collections requires a run id")
	}
	results, err := s.daemon.RunCollections(s.ctx, req.RunID)
	if err != nil {
		return err
	}
	resp.Collections = make([]CollectionResult, 0, len(results))
	for _, result := range results {
		resp.Collections = append(resp.Collections, convertResult(result))
	}
	return nil
}

func (s *service) Collections(_ CollectionsRequest, resp *CollectionsResponse) error {
	collections, err := s.daemon.Collections(s.ctx)
	if err != nil {
		return err
	}
	resp.Collections = make([]CollectionInfo, 0, len(collections))
	for _, collection := range collections {
		info := CollectionInfo{
			ID:        string(collection.ID),
			Name:      collection.Name,
			ItemCount: len(collection.ItemIDs),
		}
		if parsed, err := criteria.Decode(collection.Overview); err == nil && parsed != nil {
			info.HasCriteria = true
			info.Criteria = parsed.Summary()
		}
		resp.Collections = append(resp.Collections, info)
	}
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC")
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
