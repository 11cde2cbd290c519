package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"shaggydog/internal/store"
)

// NewStore opens a SQLite store in a per-test temp directory and closes it
// during cleanup.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "shaggydog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

// SeedUser inserts an account and returns it.
func SeedUser(t testing.TB, s *store.Store, username string) *store.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), username, "test-hash")
	if err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return user
}

// SeedTransformation inserts a completed transformation for the user and
// returns its ID.
func SeedTransformation(t testing.TB, s *store.Store, userID int64, breed string) int64 {
	t.Helper()

	id, err := s.InsertTransformation(context.Background(), &store.Transformation{
		UserID:      userID,
		Breed:       breed,
		Original:    []byte("original"),
		Transition1: []byte("transition1"),
		Transition2: []byte("transition2"),
		FinalDog:    []byte("final"),
	})
	if err != nil {
		t.Fatalf("seed transformation: %v", err)
	}
	return id
}
