package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"shaggydog/internal/services"
	"shaggydog/internal/store"
	"shaggydog/internal/testsupport"
)

func TestCreateAndFetchUser(t *testing.T) {
	s := testsupport.NewStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "hashed-password")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected non-zero user ID")
	}

	byName, err := s.UserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("UserByUsername returned error: %v", err)
	}
	if byName.ID != user.ID || byName.PasswordHash != "hashed-password" {
		t.Fatalf("unexpected user %+v", byName)
	}

	byID, err := s.UserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("UserByID returned error: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("unexpected username %q", byID.Username)
	}
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	s := testsupport.NewStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "alice", "hash-1"); err != nil {
		t.Fatalf("first CreateUser returned error: %v", err)
	}
	_, err := s.CreateUser(ctx, "alice", "hash-2")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for duplicate, got %v", err)
	}
}

func TestUserLookupMiss(t *testing.T) {
	s := testsupport.NewStore(t)
	if _, err := s.UserByUsername(context.Background(), "nobody"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransformationRoundTrip(t *testing.T) {
	s := testsupport.NewStore(t)
	ctx := context.Background()

	user := testsupport.SeedUser(t, s, "alice")
	id := testsupport.SeedTransformation(t, s, user.ID, "Golden Retriever")

	full, err := s.TransformationByID(ctx, user.ID, id)
	if err != nil {
		t.Fatalf("TransformationByID returned error: %v", err)
	}
	if full.Breed != "Golden Retriever" {
		t.Fatalf("unexpected breed %q", full.Breed)
	}
	if string(full.FinalDog) != "final" || string(full.Original) != "original" {
		t.Fatal("image blobs did not round-trip")
	}
}

func TestTransformationOwnershipEnforced(t *testing.T) {
	s := testsupport.NewStore(t)
	ctx := context.Background()

	alice := testsupport.SeedUser(t, s, "alice")
	bob := testsupport.SeedUser(t, s, "bob")
	id := testsupport.SeedTransformation(t, s, alice.ID, "Beagle")

	if _, err := s.TransformationByID(ctx, bob.ID, id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user's row, got %v", err)
	}
	if _, err := s.TransformationImage(ctx, bob.ID, id, store.ImageFinalDog); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user's image, got %v", err)
	}
	if err := s.DeleteTransformation(ctx, bob.ID, id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting other user's row, got %v", err)
	}
}

func TestTransformationImageByKind(t *testing.T) {
	s := testsupport.NewStore(t)
	ctx := context.Background()

	user := testsupport.SeedUser(t, s, "alice")
	id := testsupport.SeedTransformation(t, s, user.ID, "Husky")

	cases := map[store.ImageKind]string{
		store.ImageOriginal:    "original",
		store.ImageTransition1: "transition1",
		store.ImageTransition2: "transition2",
		store.ImageFinalDog:    "final",
	}
	for kind, want := range cases {
		data, err := s.TransformationImage(ctx, user.ID, id, kind)
		if err != nil {
			t.Fatalf("TransformationImage(%s) returned error: %v", kind, err)
		}
		if string(data) != want {
			t.Fatalf("kind %s: expected %q, got %q", kind, want, data)
		}
	}

	if _, err := s.TransformationImage(ctx, user.ID, id, store.ImageKind("bogus")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown kind, got %v", err)
	}
}

func TestListAndCountTransformations(t *testing.T) {
	s := testsupport.NewStore(t)
	ctx := context.Background()

	user := testsupport.SeedUser(t, s, "alice")
	testsupport.SeedTransformation(t, s, user.ID, "Beagle")
	testsupport.SeedTransformation(t, s, user.ID, "Poodle")

	summaries, err := s.ListTransformations(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTransformations returned error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	// Newest first; ties broken by descending ID.
	if summaries[0].Breed != "Poodle" {
		t.Fatalf("expected newest first, got %q", summaries[0].Breed)
	}

	count, err := s.CountTransformations(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountTransformations returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestDeleteTransformation(t *testing.T) {
	s := testsupport.NewStore(t)
	ctx := context.Background()

	user := testsupport.SeedUser(t, s, "alice")
	id := testsupport.SeedTransformation(t, s, user.ID, "Beagle")

	if err := s.DeleteTransformation(ctx, user.ID, id); err != nil {
		t.Fatalf("DeleteTransformation returned error: %v", err)
	}
	if _, err := s.TransformationByID(ctx, user.ID, id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	user, err := s.CreateUser(context.Background(), "alice", "hash")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.UserByID(context.Background(), user.ID); err != nil {
		t.Fatalf("user should survive reopen: %v", err)
	}
}
