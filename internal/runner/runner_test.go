package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"shaggydog/internal/progress"
	"shaggydog/internal/services"
	"shaggydog/internal/staging"
	"shaggydog/internal/store"
	"shaggydog/internal/transform"
)

type fakePipeline struct {
	result   *transform.Result
	err      error
	release  chan struct{}
	started  chan struct{}
	honorCtx bool
}

func (f *fakePipeline) Run(ctx context.Context, original []byte, onProgress transform.ProgressFunc) (*transform.Result, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		if f.honorCtx {
			select {
			case <-f.release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			<-f.release
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if onProgress != nil {
		onProgress(10, "Identifying dog breed...")
	}
	return f.result, nil
}

type fakePersister struct {
	nextID int64
	err    error
	saved  atomic.Int64
}

func (f *fakePersister) InsertTransformation(ctx context.Context, t *store.Transformation) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved.Add(1)
	return f.nextID, nil
}

func newTestRunner(pipeline Pipeline, persist Persister) (*Runner, *staging.Store, *progress.Tracker) {
	uploads := staging.NewStore(time.Minute)
	tracker := progress.NewTracker(nil)
	r := New(pipeline, persist, uploads, tracker, nil)
	return r, uploads, tracker
}

func waitForStatus(t *testing.T, tracker *progress.Tracker, userID int64, want progress.Status) progress.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := tracker.Snapshot(userID)
		if snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %q, last: %+v", want, tracker.Snapshot(userID))
	return progress.Snapshot{}
}

func TestBeginRunsJobToCompletion(t *testing.T) {
	pipeline := &fakePipeline{result: &transform.Result{
		Breed:       "Golden Retriever",
		Transition1: []byte("t1"),
		Transition2: []byte("t2"),
		FinalDog:    []byte("dog"),
	}}
	persist := &fakePersister{nextID: 42}
	r, uploads, tracker := newTestRunner(pipeline, persist)

	token := uploads.Put(1, []byte("headshot"))
	jobID, err := r.Begin(1, token)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if jobID == "" {
		t.Fatal("expected non-empty job ID")
	}

	snap := waitForStatus(t, tracker, 1, progress.StatusComplete)
	if snap.TransformationID != 42 {
		t.Fatalf("expected transformation id 42, got %d", snap.TransformationID)
	}
	if persist.saved.Load() != 1 {
		t.Fatal("result should be persisted exactly once")
	}
	if err := r.Wait(time.Second); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if r.Active(1) {
		t.Fatal("job should be released after completion")
	}
}

func TestBeginRejectsConcurrentJobForSameUser(t *testing.T) {
	pipeline := &fakePipeline{result: &transform.Result{}, release: make(chan struct{}), started: make(chan struct{})}
	r, uploads, _ := newTestRunner(pipeline, &fakePersister{nextID: 1})

	first := uploads.Put(1, []byte("headshot"))
	if _, err := r.Begin(1, first); err != nil {
		t.Fatalf("first Begin returned error: %v", err)
	}
	<-pipeline.started

	second := uploads.Put(1, []byte("another"))
	_, err := r.Begin(1, second)
	if !errors.Is(err, ErrJobActive) {
		t.Fatalf("expected ErrJobActive, got %v", err)
	}
	// The rejected upload stays staged for a retry.
	if _, err := uploads.Take(second); err != nil {
		t.Fatalf("rejected upload should remain staged: %v", err)
	}

	close(pipeline.release)
	if err := r.Wait(time.Second); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
}

func TestBeginFailsOnMissingToken(t *testing.T) {
	r, _, _ := newTestRunner(&fakePipeline{}, &fakePersister{})
	_, err := r.Begin(1, "no-such-token")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if r.Active(1) {
		t.Fatal("failed Begin should not leave the user marked active")
	}
}

func TestPipelineErrorMarksJobFailed(t *testing.T) {
	remoteErr := services.Wrap(services.ErrRemote, "openai", "generate", "http 500", nil)
	pipeline := &fakePipeline{err: remoteErr}
	r, uploads, tracker := newTestRunner(pipeline, &fakePersister{})

	token := uploads.Put(1, []byte("headshot"))
	if _, err := r.Begin(1, token); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	snap := waitForStatus(t, tracker, 1, progress.StatusError)
	if snap.Percent != 0 {
		t.Fatalf("failed job should reset percent, got %d", snap.Percent)
	}
	if err := r.Wait(time.Second); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
}

func TestPersistErrorMarksJobFailed(t *testing.T) {
	pipeline := &fakePipeline{result: &transform.Result{Breed: "Beagle"}}
	persist := &fakePersister{err: errors.New("disk full")}
	r, uploads, tracker := newTestRunner(pipeline, persist)

	token := uploads.Put(1, []byte("headshot"))
	if _, err := r.Begin(1, token); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	waitForStatus(t, tracker, 1, progress.StatusError)
	if err := r.Wait(time.Second); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
}

func TestCancelAbortsRunningJob(t *testing.T) {
	pipeline := &fakePipeline{release: make(chan struct{}), started: make(chan struct{}), honorCtx: true}
	r, uploads, tracker := newTestRunner(pipeline, &fakePersister{})

	token := uploads.Put(1, []byte("headshot"))
	if _, err := r.Begin(1, token); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	<-pipeline.started

	if !r.Cancel(1) {
		t.Fatal("Cancel should report an active job")
	}
	waitForStatus(t, tracker, 1, progress.StatusError)
	if err := r.Wait(time.Second); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if r.Cancel(1) {
		t.Fatal("Cancel after completion should report no active job")
	}
}

func TestStopCancelsAllJobs(t *testing.T) {
	pipeline := &fakePipeline{release: make(chan struct{}), started: make(chan struct{}), honorCtx: true}
	r, uploads, _ := newTestRunner(pipeline, &fakePersister{})

	token := uploads.Put(1, []byte("headshot"))
	if _, err := r.Begin(1, token); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	<-pipeline.started

	if err := r.Stop(time.Second); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if r.ActiveCount() != 0 {
		t.Fatalf("expected no active jobs after Stop, got %d", r.ActiveCount())
	}
}
