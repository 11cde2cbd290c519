package progress

import (
	"strings"
	"time"
)

// Tracker mediates snapshot writes. Every write names the job it belongs
// to; once a newer job begins for the same user, writes from the old job
// no longer land.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker wraps a Store. A nil store gets a fresh MemoryStore.
func NewTracker(store Store) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{store: store, now: time.Now}
}

// Begin registers a new job for the user and publishes its starting
// snapshot, superseding whatever job was tracked before.
func (t *Tracker) Begin(userID int64, jobID string) {
	t.store.Set(userID, Snapshot{
		JobID:     jobID,
		Status:    StatusStarting,
		Percent:   0,
		Message:   "Starting transformation...",
		UpdatedAt: t.now(),
	})
}

// Update publishes a progress checkpoint. Stale job IDs are ignored.
func (t *Tracker) Update(userID int64, jobID string, percent int, message string) {
	t.write(userID, jobID, Snapshot{
		JobID:   jobID,
		Status:  StatusProcessing,
		Percent: clampPercent(percent),
		Message: message,
	})
}

// Complete marks the job finished and records the stored transformation.
func (t *Tracker) Complete(userID int64, jobID string, transformationID int64) {
	t.write(userID, jobID, Snapshot{
		JobID:            jobID,
		Status:           StatusComplete,
		Percent:          100,
		Message:          "Transformation complete!",
		TransformationID: transformationID,
	})
}

// Fail marks the job failed. Percent resets to zero and the message is
// prefixed so clients can surface it directly.
func (t *Tracker) Fail(userID int64, jobID string, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "transformation failed"
	}
	if !strings.HasPrefix(message, "Error: ") {
		message = "Error: " + message
	}
	t.write(userID, jobID, Snapshot{
		JobID:   jobID,
		Status:  StatusError,
		Percent: 0,
		Message: message,
	})
}

// Snapshot returns the user's current snapshot, or the idle snapshot when
// nothing is tracked.
func (t *Tracker) Snapshot(userID int64) Snapshot {
	if snap, ok := t.store.Get(userID); ok {
		return snap
	}
	return Idle()
}

// Clear drops the user's snapshot entirely.
func (t *Tracker) Clear(userID int64) {
	t.store.Delete(userID)
}

func (t *Tracker) write(userID int64, jobID string, snap Snapshot) {
	current, ok := t.store.Get(userID)
	if ok && current.JobID != jobID {
		return
	}
	snap.UpdatedAt = t.now()
	t.store.Set(userID, snap)
}

func clampPercent(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
