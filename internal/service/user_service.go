package service

import (
	"context"
	"errors"

	"app/internal/model"
	"app/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	// UpsertFromIdentity registers the user on first login and refreshes
	// profile fields on every subsequent login.
	UpsertFromIdentity(ctx context.Context, id *model.Identity) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) UpsertFromIdentity(ctx context.Context, id *model.Identity) (*model.User, error) {
	u := &model.User{
		ID:              id.UserID,
		Email:           id.Email,
		FirstName:       id.FirstName,
		LastName:        id.LastName,
		ProfileImageURL: id.ProfileImageURL,
	}
	if err := s.userRepo.UpsertUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
