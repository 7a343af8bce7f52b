package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"timelapse/internal/api"
	"timelapse/internal/config"
	"timelapse/internal/epic"
	"timelapse/internal/job"
	"timelapse/internal/logging"
	"timelapse/internal/staging"
	"timelapse/internal/timelapse"
	"timelapse/internal/video"
)

// Daemon wires the pipeline, catalog client, and HTTP API into a single
// lifecycle and enforces single-instance execution via a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *timelapse.Pipeline
	cache    *epic.DayCache

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with fully wired collaborators.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	var cache *epic.DayCache
	if cfg.EPIC.CacheEnabled {
		var err error
		cache, err = epic.OpenDayCache(cfg.EPIC.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open day cache: %w", err)
		}
	}

	catalog := epic.NewClient(cfg, nil, cache, logger)
	assembler := video.NewAssembler(cfg, logger)
	transcoder := video.NewTranscoder(cfg, logger)
	pipeline := timelapse.New(cfg, catalog, assembler, transcoder, job.NewTracker(), logger)

	return newWithPipeline(cfg, logger, pipeline, cache)
}

// NewWithPipeline constructs a daemon around a prebuilt pipeline (used in tests).
func NewWithPipeline(cfg *config.Config, logger *slog.Logger, pipeline *timelapse.Pipeline) (*Daemon, error) {
	return newWithPipeline(cfg, logger, pipeline, nil)
}

func newWithPipeline(cfg *config.Config, logger *slog.Logger, pipeline *timelapse.Pipeline, cache *epic.DayCache) (*Daemon, error) {
	if cfg == nil || logger == nil || pipeline == nil {
		return nil, errors.New("daemon requires config, logger, and pipeline")
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "timelapsed.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		pipeline: pipeline,
		cache:    cache,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, sweeps stale staging sessions, and brings
// up the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another timelapsed instance is already running")
	}

	maxAge := time.Duration(d.cfg.Workflow.StagingMaxAgeHours) * time.Hour
	result := staging.CleanStale(d.cfg.Paths.StagingDir, maxAge, d.logger)
	if len(result.Removed) > 0 {
		d.logger.Info("startup staging sweep", logging.Int("removed", len(result.Removed)))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("timelapsed started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API, waits for an in-flight job to unwind, and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.pipeline.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("timelapsed stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.cache.Close()
}

// APIAddr returns the bound API listener address, empty until Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// StartJob validates the request dates and launches a job cycle. The job runs
// under the daemon context, not the request context, so it survives the
// caller disconnecting and stops with the daemon.
func (d *Daemon) StartJob(startDate, endDate string) (string, error) {
	dateRange, err := timelapse.ParseDateRange(startDate, endDate)
	if err != nil {
		return "", err
	}
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return d.pipeline.Start(ctx, dateRange)
}

// CancelJob raises the cancel signal. Idempotent, harmless while idle.
func (d *Daemon) CancelJob() {
	d.pipeline.Cancel()
}

// Progress returns the live job snapshot.
func (d *Daemon) Progress() job.Snapshot {
	return d.pipeline.Tracker().Snapshot()
}

// Status aggregates runtime state for the status endpoint and CLI.
func (d *Daemon) Status() api.StatusResponse {
	snap := d.Progress()
	status := api.StatusResponse{
		Running: d.running.Load(),
		PID:     os.Getpid(),
		JobID:   snap.JobID,
		Progress: api.ProgressResponse{
			Total:     snap.Total,
			Completed: snap.Completed,
			Status:    snap.Status.String(),
		},
		LastError: snap.LastError,
		AssetPath: d.cfg.AssetPath(),
	}
	if info, err := os.Stat(d.cfg.AssetPath()); err == nil && !info.IsDir() {
		status.AssetPresent = true
		status.AssetSize = info.Size()
	}
	return status
}
