package timelapse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"timelapse/internal/config"
	"timelapse/internal/epic"
	"timelapse/internal/job"
	"timelapse/internal/logging"
	"timelapse/internal/staging"
)

// Catalog resolves calendar days to image descriptors and descriptors to
// bytes.
type Catalog interface {
	ImagesForDay(ctx context.Context, day time.Time) ([]epic.Image, error)
	Download(ctx context.Context, img epic.Image) ([]byte, error)
}

// Assembler builds the raw intermediate video from an ordered frame sequence.
type Assembler interface {
	Assemble(ctx context.Context, frames []string, framePattern, output string) error
}

// Transcoder converts the raw video into the published web asset.
type Transcoder interface {
	Transcode(ctx context.Context, input, output string) error
}

// errCancelled routes a cancel observation through the stage return path. It
// is an outcome, not a failure: the controller maps it to a clean Idle.
var errCancelled = errors.New("cancel requested")

// errNoImagery marks a catalog range with no descriptors at all: the job ends
// Idle without touching the staging area.
var errNoImagery = errors.New("catalog returned no imagery for range")

// Pipeline drives the single background job through its stages, publishing
// every transition to the shared tracker. At most one job runs at a time;
// admission is decided atomically by the tracker.
type Pipeline struct {
	cfg        *config.Config
	catalog    Catalog
	assembler  Assembler
	transcoder Transcoder
	tracker    *job.Tracker
	logger     *slog.Logger

	wg sync.WaitGroup
}

// New constructs a pipeline. The tracker is shared with the API layer, which
// reads progress and raises the cancel signal.
func New(cfg *config.Config, catalog Catalog, assembler Assembler, transcoder Transcoder, tracker *job.Tracker, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		catalog:    catalog,
		assembler:  assembler,
		transcoder: transcoder,
		tracker:    tracker,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Tracker exposes the shared job state.
func (p *Pipeline) Tracker() *job.Tracker {
	return p.tracker
}

// Start claims the job slot and launches the pipeline in the background,
// returning the job ID immediately. job.ErrJobRunning is returned while a
// cycle is already in flight.
func (p *Pipeline) Start(ctx context.Context, dateRange DateRange) (string, error) {
	jobID := uuid.NewString()[:8]
	if err := p.tracker.Begin(jobID); err != nil {
		return "", err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx, jobID, dateRange)
	}()
	return jobID, nil
}

// Cancel raises the cooperative cancel signal for the current cycle.
func (p *Pipeline) Cancel() {
	p.tracker.RequestCancel()
}

// Wait blocks until the in-flight job, if any, has fully unwound. Used during
// shutdown and in tests.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// run executes one job cycle and maps its outcome onto a terminal tracker
// state. Every failure is contained here; nothing propagates past the
// controller, so the service can never get stuck in a non-idle status.
func (p *Pipeline) run(ctx context.Context, jobID string, dateRange DateRange) {
	logger := p.logger.With(logging.String(logging.FieldJobID, jobID))
	logger.Info("job started", logging.String("range", dateRange.String()))
	started := time.Now()

	err := p.execute(ctx, jobID, dateRange, logger)
	switch {
	case err == nil:
		p.tracker.End(job.StatusDone, nil)
		logger.Info("timelapse complete",
			logging.Duration("elapsed", time.Since(started)),
			logging.String(logging.FieldPath, p.cfg.AssetPath()),
		)
	case errors.Is(err, errCancelled):
		p.tracker.End(job.StatusIdle, nil)
		logger.Info("job cancelled", logging.Duration("elapsed", time.Since(started)))
	case errors.Is(err, errNoImagery):
		p.tracker.End(job.StatusIdle, nil)
		logger.Info("no imagery for range, nothing to do")
	default:
		p.tracker.End(job.StatusIdle, err)
		logger.Error("job failed", logging.Error(err), logging.Duration("elapsed", time.Since(started)))
	}
}

func (p *Pipeline) execute(ctx context.Context, jobID string, dateRange DateRange, logger *slog.Logger) error {
	descriptors, err := p.fetchDescriptors(ctx, dateRange, logger)
	if err != nil {
		return err
	}
	if len(descriptors) == 0 {
		return errNoImagery
	}

	session, err := staging.NewSession(p.cfg.Paths.StagingDir, jobID, logger)
	if err != nil {
		return err
	}
	defer session.Cleanup()

	if err := p.acquire(ctx, descriptors, session, logger); err != nil {
		return err
	}

	if p.tracker.CancelRequested() {
		return errCancelled
	}
	p.tracker.SetStatus(job.StatusAssembling)
	logger.Info("stage started", logging.String(logging.FieldStatus, job.StatusAssembling.String()))
	frames, err := session.Frames()
	if err != nil {
		return err
	}
	if err := p.assembler.Assemble(ctx, frames, session.FrameGlobPattern(), session.RawVideoPath()); err != nil {
		return err
	}

	if p.tracker.CancelRequested() {
		return errCancelled
	}
	p.tracker.SetStatus(job.StatusConverting)
	logger.Info("stage started", logging.String(logging.FieldStatus, job.StatusConverting.String()))
	if err := p.transcoder.Transcode(ctx, session.RawVideoPath(), p.cfg.AssetPath()); err != nil {
		return err
	}

	return nil
}

// fetchDescriptors expands the range into the ordered descriptor sequence,
// one catalog query per calendar day, ascending.
func (p *Pipeline) fetchDescriptors(ctx context.Context, dateRange DateRange, logger *slog.Logger) ([]epic.Image, error) {
	var descriptors []epic.Image
	for _, day := range dateRange.Days() {
		if p.tracker.CancelRequested() {
			return nil, errCancelled
		}
		images, err := p.catalog.ImagesForDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog day %s: %w", day.Format(dayFormat), err)
		}
		descriptors = append(descriptors, images...)
	}
	logger.Info("catalog range expanded",
		logging.Int("days", len(dateRange.Days())),
		logging.Int(logging.FieldTotal, len(descriptors)),
	)
	return descriptors, nil
}

// acquire downloads each descriptor into the staging session, keyed by
// sequence index. A single failed download aborts the job: a partial frame
// set must never reach assembly.
func (p *Pipeline) acquire(ctx context.Context, descriptors []epic.Image, session *staging.Session, logger *slog.Logger) error {
	p.tracker.SetTotal(len(descriptors))

	for idx, img := range descriptors {
		if p.tracker.CancelRequested() {
			return errCancelled
		}
		data, err := p.catalog.Download(ctx, img)
		if err != nil {
			return fmt.Errorf("acquire frame %d: %w", idx, err)
		}
		if err := session.WriteFrame(idx, data); err != nil {
			return err
		}
		p.tracker.SetCompleted(idx + 1)
		logger.Debug("frame staged",
			logging.Int(logging.FieldFrame, idx),
			logging.Int(logging.FieldCompleted, idx+1),
			logging.String(logging.FieldDate, img.CaptureDay()),
		)
	}
	return nil
}
