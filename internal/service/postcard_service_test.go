package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"

	"github.com/rs/zerolog"
)

func TestCreatePostcardNormalizesPathAndSetsACL(t *testing.T) {
	repo := newFakePostcardRepo()
	storage := newFakeStorage()
	svc := NewPostcardService(repo, storage, zerolog.Nop())

	imageURL := "https://storage.example.com/bucket/private/uploads/u1/abc?sig=xyz"
	postcard, err := svc.CreatePostcard(context.Background(), "u1", imageURL, "Greetings", "", true)
	if err != nil {
		t.Fatalf("CreatePostcard: %v", err)
	}

	if postcard.ImagePath != "/objects/private/uploads/u1/abc" {
		t.Fatalf("image path not normalized: %q", postcard.ImagePath)
	}
	if !postcard.IsPublic {
		t.Fatal("expected public postcard")
	}
	public, ok := storage.acls["private/uploads/u1/abc"]
	if !ok || !public {
		t.Fatalf("expected public ACL on the stored object, got %v %v", public, ok)
	}
}

func TestCreatePostcardPrivateACL(t *testing.T) {
	repo := newFakePostcardRepo()
	storage := newFakeStorage()
	svc := NewPostcardService(repo, storage, zerolog.Nop())

	if _, err := svc.CreatePostcard(context.Background(), "u1", "/objects/private/uploads/u1/abc", "Card", "desc", false); err != nil {
		t.Fatalf("CreatePostcard: %v", err)
	}
	if public := storage.acls["private/uploads/u1/abc"]; public {
		t.Fatal("expected private ACL")
	}
}

func TestCreatePostcardWithoutStorage(t *testing.T) {
	repo := newFakePostcardRepo()
	svc := NewPostcardService(repo, nil, zerolog.Nop())

	// ACL updates are skipped when storage is unconfigured; the row is
	// still created.
	if _, err := svc.CreatePostcard(context.Background(), "u1", "key", "Card", "", true); err != nil {
		t.Fatalf("CreatePostcard without storage: %v", err)
	}
	if repo.created != 1 {
		t.Fatalf("expected 1 postcard, got %d", repo.created)
	}
}

func TestDeletePostcardOwnership(t *testing.T) {
	repo := newFakePostcardRepo()
	storage := newFakeStorage()
	svc := NewPostcardService(repo, storage, zerolog.Nop())
	repo.postcards["pc1"] = &model.Postcard{ID: "pc1", UserID: "owner", ImagePath: "/objects/private/uploads/owner/img"}

	if err := svc.DeletePostcard(context.Background(), "intruder", "pc1"); !errors.Is(err, ErrPostcardNotFound) {
		t.Fatalf("expected ErrPostcardNotFound for foreign delete, got %v", err)
	}
	if _, ok := repo.postcards["pc1"]; !ok {
		t.Fatal("foreign delete must not remove the postcard")
	}

	if err := svc.DeletePostcard(context.Background(), "owner", "pc1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := repo.postcards["pc1"]; ok {
		t.Fatal("expected postcard row removed")
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "private/uploads/owner/img" {
		t.Fatalf("expected stored object removed, got %v", storage.deleted)
	}
}
