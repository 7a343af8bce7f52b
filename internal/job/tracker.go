package job

import (
	"errors"
	"sync"
)

// ErrJobRunning is returned by Begin while another job cycle is in flight.
var ErrJobRunning = errors.New("a timelapse job is already running")

// Snapshot is a point-in-time copy of the shared job state.
type Snapshot struct {
	JobID     string
	Total     int
	Completed int
	Status    Status
	LastError string
}

// Tracker owns the progress state and cancel signal shared between the
// background job and the request-serving handlers. Every read and write goes
// through the tracker mutex; nothing else may hold this state.
type Tracker struct {
	mu              sync.Mutex
	jobID           string
	total           int
	completed       int
	status          Status
	lastError       string
	cancelRequested bool
}

// NewTracker returns a tracker in the idle state.
func NewTracker() *Tracker {
	return &Tracker{status: StatusIdle}
}

// Begin atomically claims the single job slot, transitioning to Downloading
// and resetting progress and the cancel signal for the new cycle. It fails
// with ErrJobRunning when a cycle is already active, so two concurrent starts
// can never interleave.
func (t *Tracker) Begin(jobID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Active() {
		return ErrJobRunning
	}
	t.jobID = jobID
	t.total = 0
	t.completed = 0
	t.status = StatusDownloading
	t.lastError = ""
	t.cancelRequested = false
	return nil
}

// SetStatus publishes a stage transition.
func (t *Tracker) SetStatus(status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
}

// SetTotal publishes the descriptor count and resets the completed counter.
func (t *Tracker) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total < 0 {
		total = 0
	}
	t.total = total
	t.completed = 0
}

// SetCompleted publishes the acquisition counter. Values below the current
// counter are ignored so progress never moves backwards within a cycle.
func (t *Tracker) SetCompleted(completed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if completed <= t.completed {
		return
	}
	if t.total > 0 && completed > t.total {
		completed = t.total
	}
	t.completed = completed
}

// RequestCancel raises the cooperative cancel flag. It is idempotent and
// always safe; while idle the flag is cleared again by the next Begin before
// any checkpoint can observe it.
func (t *Tracker) RequestCancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelRequested = true
}

// CancelRequested reports whether cancellation has been requested for the
// current cycle. Stages poll this at their checkpoints.
func (t *Tracker) CancelRequested() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelRequested
}

// End closes the job cycle with a terminal status (Done, or Idle for cancel
// and failure paths), records the failure message if any, and clears the
// cancel signal now that the controller has observed it.
func (t *Tracker) End(status Status, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	if err != nil {
		t.lastError = err.Error()
	}
	t.cancelRequested = false
}

// Snapshot returns a consistent copy of the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		JobID:     t.jobID,
		Total:     t.total,
		Completed: t.completed,
		Status:    t.status,
		LastError: t.lastError,
	}
}
