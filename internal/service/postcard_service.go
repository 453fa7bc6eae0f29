package service

import (
	"context"
	"errors"

	"app/internal/acl"
	"app/internal/model"
	"app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrPostcardNotFound = errors.New("postcard not found")

// PostcardService manages uploaded designs.
type PostcardService interface {
	// CreatePostcard normalizes the image path, persists the postcard
	// and sets the storage ACL to match the visibility flag.
	CreatePostcard(ctx context.Context, userID, imageURL, title, description string, isPublic bool) (*model.Postcard, error)
	GetUserPostcards(ctx context.Context, userID string) ([]model.Postcard, error)
	// DeletePostcard removes an owned postcard and its stored object.
	// Foreign or missing postcards report not-found.
	DeletePostcard(ctx context.Context, userID, postcardID string) error
}

type postcardService struct {
	repo    repository.PostcardRepository
	storage ObjectStorage
	logger  zerolog.Logger
}

// NewPostcardService creates a PostcardService. storage may be nil when
// object storage is unconfigured; ACL updates are then skipped.
func NewPostcardService(repo repository.PostcardRepository, storage ObjectStorage, logger zerolog.Logger) PostcardService {
	return &postcardService{
		repo:    repo,
		storage: storage,
		logger:  logger.With().Str("service", "PostcardService").Logger(),
	}
}

func (s *postcardService) CreatePostcard(ctx context.Context, userID, imageURL, title, description string, isPublic bool) (*model.Postcard, error) {
	postcard := &model.Postcard{
		ID:          uuid.NewString(),
		UserID:      userID,
		ImagePath:   acl.NormalizeObjectPath(imageURL),
		Title:       title,
		Description: description,
		IsPublic:    isPublic,
	}
	if err := s.repo.CreatePostcard(ctx, postcard); err != nil {
		return nil, err
	}

	// The visibility flag drives the storage ACL at write time only;
	// read authorization never consults it.
	if s.storage == nil {
		s.logger.Warn().Str("postcard_id", postcard.ID).Msg("Object storage not configured, skipping ACL update")
		return postcard, nil
	}
	if err := s.storage.SetObjectACL(ctx, acl.ToBucketKey(postcard.ImagePath), isPublic); err != nil {
		return nil, err
	}
	return postcard, nil
}

func (s *postcardService) GetUserPostcards(ctx context.Context, userID string) ([]model.Postcard, error) {
	return s.repo.GetPostcardsByUserID(ctx, userID)
}

func (s *postcardService) DeletePostcard(ctx context.Context, userID, postcardID string) error {
	postcard, err := s.repo.GetPostcardByID(ctx, postcardID)
	if err != nil {
		return err
	}
	if postcard == nil || postcard.UserID != userID {
		return ErrPostcardNotFound
	}

	if s.storage != nil {
		if err := s.storage.DeleteObject(ctx, acl.ToBucketKey(postcard.ImagePath)); err != nil {
			// The database row is still removed; orphaned objects are
			// cheaper than dangling references.
			s.logger.Error().Err(err).Str("postcard_id", postcardID).Msg("Failed to delete stored object")
		}
	}
	return s.repo.DeletePostcard(ctx, postcardID)
}
