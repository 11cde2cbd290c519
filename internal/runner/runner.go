// Package runner executes transformation jobs in the background, one per
// user at a time, publishing progress as they advance.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shaggydog/internal/logging"
	"shaggydog/internal/progress"
	"shaggydog/internal/services"
	"shaggydog/internal/staging"
	"shaggydog/internal/store"
	"shaggydog/internal/transform"
)

// ErrJobActive is returned when a user already has a transformation running.
var ErrJobActive = errors.New("transformation already in progress")

// Pipeline is the transformation the runner drives.
type Pipeline interface {
	Run(ctx context.Context, original []byte, onProgress transform.ProgressFunc) (*transform.Result, error)
}

// Persister stores completed results.
type Persister interface {
	InsertTransformation(ctx context.Context, t *store.Transformation) (int64, error)
}

// Uploads supplies staged images by claim token.
type Uploads interface {
	Take(token string) (staging.Entry, error)
}

// Runner owns the background goroutines that run transformations.
type Runner struct {
	pipeline Pipeline
	persist  Persister
	uploads  Uploads
	tracker  *progress.Tracker
	logger   *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	active map[int64]context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a runner. Jobs started later are children of context.Background
// until Stop cancels them all.
func New(pipeline Pipeline, persist Persister, uploads Uploads, tracker *progress.Tracker, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		pipeline: pipeline,
		persist:  persist,
		uploads:  uploads,
		tracker:  tracker,
		logger:   logger,
		baseCtx:  ctx,
		cancel:   cancel,
		active:   make(map[int64]context.CancelFunc),
	}
}

// Begin claims the staged upload and starts a background job for the user.
// A user may only run one job at a time; a second Begin fails with
// ErrJobActive and leaves the staged upload in place for a later attempt.
func (r *Runner) Begin(userID int64, token string) (string, error) {
	jobID := uuid.NewString()

	r.mu.Lock()
	if _, busy := r.active[userID]; busy {
		r.mu.Unlock()
		return "", ErrJobActive
	}
	jobCtx, jobCancel := context.WithCancel(r.baseCtx)
	r.active[userID] = jobCancel
	r.mu.Unlock()

	entry, err := r.uploads.Take(token)
	if err != nil {
		r.release(userID)
		jobCancel()
		return "", err
	}

	r.tracker.Begin(userID, jobID)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer jobCancel()
		defer r.release(userID)
		r.run(jobCtx, userID, jobID, entry.Image)
	}()
	return jobID, nil
}

func (r *Runner) run(ctx context.Context, userID int64, jobID string, original []byte) {
	logger := r.logger.With(
		logging.Int64(logging.FieldUserID, userID),
		logging.String(logging.FieldJobID, jobID),
	)
	logger.Info("transformation started")

	result, err := r.pipeline.Run(ctx, original, func(percent int, message string) {
		r.tracker.Update(userID, jobID, percent, message)
	})
	if err != nil {
		logger.Error("transformation failed", logging.Error(err))
		r.tracker.Fail(userID, jobID, services.UserMessage(err))
		return
	}

	id, err := r.persist.InsertTransformation(ctx, &store.Transformation{
		UserID:      userID,
		Breed:       result.Breed,
		Original:    original,
		Transition1: result.Transition1,
		Transition2: result.Transition2,
		FinalDog:    result.FinalDog,
	})
	if err != nil {
		logger.Error("transformation save failed", logging.Error(err))
		r.tracker.Fail(userID, jobID, "failed to save transformation")
		return
	}

	r.tracker.Complete(userID, jobID, id)
	logger.Info("transformation complete",
		logging.String("breed", result.Breed),
		logging.Int64("transformation_id", id),
	)
}

// Cancel aborts the user's running job, if any.
func (r *Runner) Cancel(userID int64) bool {
	r.mu.Lock()
	cancel, ok := r.active[userID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Active reports whether the user has a job running.
func (r *Runner) Active(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[userID]
	return ok
}

// ActiveCount reports how many jobs are currently running.
func (r *Runner) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// Stop cancels all jobs and waits for them to exit, up to the timeout.
func (r *Runner) Stop(timeout time.Duration) error {
	r.cancel()
	return r.Wait(timeout)
}

// Wait blocks until all jobs finish or the timeout elapses.
func (r *Runner) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("timed out waiting for jobs to finish")
	}
}

func (r *Runner) release(userID int64) {
	r.mu.Lock()
	delete(r.active, userID)
	r.mu.Unlock()
}
