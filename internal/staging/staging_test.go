package staging

import (
	"errors"
	"testing"
	"time"

	"shaggydog/internal/services"
)

func TestPutAndTakeRoundTrip(t *testing.T) {
	store := NewStore(time.Minute)
	token := store.Put(7, []byte("jpeg-bytes"))
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	entry, err := store.Take(token)
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if entry.UserID != 7 {
		t.Fatalf("expected user 7, got %d", entry.UserID)
	}
	if string(entry.Image) != "jpeg-bytes" {
		t.Fatalf("unexpected image payload %q", entry.Image)
	}
}

func TestTakeIsSingleUse(t *testing.T) {
	store := NewStore(time.Minute)
	token := store.Put(7, []byte("jpeg-bytes"))

	if _, err := store.Take(token); err != nil {
		t.Fatalf("first Take returned error: %v", err)
	}
	_, err := store.Take(token)
	if err == nil {
		t.Fatal("second Take should fail")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTakeRejectsUnknownToken(t *testing.T) {
	store := NewStore(time.Minute)
	if _, err := store.Take("no-such-token"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTakeRejectsExpiredEntry(t *testing.T) {
	store := NewStore(time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }

	token := store.Put(7, []byte("jpeg-bytes"))
	current = current.Add(2 * time.Minute)

	_, err := store.Take(token)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired entry, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("expired entry should be removed on Take")
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	store := NewStore(time.Minute)
	current := time.Now()
	store.now = func() time.Time { return current }

	store.Put(1, []byte("old"))
	current = current.Add(2 * time.Minute)
	fresh := store.Put(2, []byte("fresh"))

	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := store.Take(fresh); err != nil {
		t.Fatalf("fresh entry should survive sweep: %v", err)
	}
}
