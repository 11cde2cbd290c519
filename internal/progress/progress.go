// Package progress tracks the state of a user's in-flight transformation so
// the web client can poll it. Snapshots are keyed by user and tagged with
// the job that produced them; writes from a superseded job are dropped.
package progress

import (
	"sync"
	"time"
)

// Status describes where a transformation job currently stands.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Snapshot is the poll response for one user's current job.
type Snapshot struct {
	JobID            string    `json:"-"`
	Status           Status    `json:"status"`
	Percent          int       `json:"progress"`
	Message          string    `json:"message"`
	TransformationID int64     `json:"transformation_id,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Idle is returned when a user has no tracked job.
func Idle() Snapshot {
	return Snapshot{
		Status:  StatusIdle,
		Percent: 0,
		Message: "No transformation in progress",
	}
}

// Store persists per-user snapshots.
type Store interface {
	Set(userID int64, snap Snapshot)
	Get(userID int64) (Snapshot, bool)
	Delete(userID int64)
}

// MemoryStore is the in-process Store used by the daemon.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[int64]Snapshot
}

// NewMemoryStore returns an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[int64]Snapshot)}
}

func (s *MemoryStore) Set(userID int64, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[userID] = snap
}

func (s *MemoryStore) Get(userID int64) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[userID]
	return snap, ok
}

func (s *MemoryStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, userID)
}
