package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"curator/internal/config"
	"curator/internal/history"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/notifications"
	"curator/internal/syncer"
)

// Daemon coordinates scheduled sync passes and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	syncer   *syncer.Syncer
	notifier notifications.Service
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	syncMu sync.Mutex
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	HistoryDBPath string
	LockFilePath  string
	LastRun       *history.Run
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *history.Store, s *syncer.Syncer, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || s == nil {
		return nil, errors.New("daemon requires config, store, and syncer")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "curatord.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		syncer:   s,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the scheduler and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another curator daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.wg.Add(1)
	go d.scheduleLoop(d.ctx)

	d.running.Store(true)
	d.logger.Info("curator daemon started", logging.Args(logging.String("lock", d.lockPath))...)
	return nil
}

// Stop halts scheduling and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Args(logging.Error(err))...)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("curator daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

func (d *Daemon) scheduleLoop(ctx context.Context) {
	defer d.wg.Done()

	interval := time.Duration(d.cfg.Sync.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.SyncAll(ctx, history.TriggerScheduled); err != nil {
				d.logger.Error("scheduled sync failed", logging.Args(logging.Error(err))...)
			}
			d.maintain(ctx)
		}
	}
}

func (d *Daemon) maintain(ctx context.Context) {
	retain := time.Duration(d.cfg.Sync.HistoryRetainDays) * 24 * time.Hour
	if removed, err := d.store.Prune(ctx, retain); err != nil {
		d.logger.Warn("history prune failed", logging.Args(logging.Error(err))...)
	} else if removed > 0 {
		d.logger.Debug("pruned sync history", logging.Args(logging.Int64("removed", removed))...)
	}
	logging.CleanupOldLogs(d.logger, d.cfg.Paths.LogDir, "*.log", d.cfg.Logging.RetentionDays)
}

// SyncAll runs a full sync pass. Passes are serialized so a manual trigger
// cannot overlap a scheduled one.
func (d *Daemon) SyncAll(ctx context.Context, trigger history.Trigger) (*syncer.Outcome, error) {
	d.syncMu.Lock()
	defer d.syncMu.Unlock()
	return d.syncer.SyncAll(ctx, trigger)
}

// SyncCollection runs a sync pass for a single collection.
func (d *Daemon) SyncCollection(ctx context.Context, trigger history.Trigger, id media.ItemID) (*syncer.Outcome, error) {
	d.syncMu.Lock()
	defer d.syncMu.Unlock()
	return d.syncer.SyncCollection(ctx, trigger, id)
}

// Collections lists the library's collections.
func (d *Daemon) Collections(ctx context.Context) ([]media.Collection, error) {
	return d.syncer.ListCollections(ctx)
}

// History returns the most recent sync runs.
func (d *Daemon) History(ctx context.Context, limit int) ([]*history.Run, error) {
	return d.store.ListRuns(ctx, limit)
}

// RunCollections returns per-collection results for a run.
func (d *Daemon) RunCollections(ctx context.Context, runID string) ([]history.CollectionResult, error) {
	return d.store.RunCollections(ctx, runID)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := d.notifier
	if notifier == nil {
		notifier = notifications.NewService(d.cfg)
	}
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		HistoryDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
	}
	runs, err := d.store.ListRuns(ctx, 1)
	if err == nil && len(runs) > 0 {
		status.LastRun = runs[0]
	}
	return status
}

// APIAddr returns the bound API address, or "" when the API is disabled.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
