// Package staging holds normalized uploads between the accept call and the
// background pipeline picking them up. Entries are single-use and expire
// after a configurable TTL so abandoned uploads do not accumulate.
package staging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"shaggydog/internal/logging"
	"shaggydog/internal/services"
)

// Entry is one staged upload.
type Entry struct {
	Token    string
	UserID   int64
	Image    []byte
	StagedAt time.Time
}

// Store keeps staged uploads in memory.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a store whose entries expire after ttl. A non-positive
// ttl defaults to fifteen minutes.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stages an upload for the user and returns its claim token.
func (s *Store) Put(userID int64, image []byte) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = Entry{
		Token:    token,
		UserID:   userID,
		Image:    image,
		StagedAt: s.now(),
	}
	return token
}

// Take claims a staged upload by token. The entry is removed whether or not
// it is still fresh; expired or unknown tokens yield ErrNotFound.
func (s *Store) Take(token string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return Entry{}, services.Wrap(services.ErrNotFound, "staging", "take", "no staged upload for token", nil)
	}
	delete(s.entries, token)
	if s.now().Sub(entry.StagedAt) > s.ttl {
		return Entry{}, services.Wrap(services.ErrNotFound, "staging", "take", "staged upload expired", nil)
	}
	return entry, nil
}

// Len reports how many entries are currently staged.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for token, entry := range s.entries {
		if entry.StagedAt.Before(cutoff) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps the store on an interval until ctx is canceled.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 && logger != nil {
					logger.Debug("removed expired staged uploads",
						logging.Int("removed", removed),
					)
				}
			}
		}
	}()
}
