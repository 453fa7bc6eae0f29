package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/acl"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type fakeUserService struct {
	users map[string]*model.User
}

func (s *fakeUserService) UpsertFromIdentity(ctx context.Context, id *model.Identity) (*model.User, error) {
	u := &model.User{ID: id.UserID, Email: id.Email}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeUserService) Get(ctx context.Context, id string) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, service.ErrUserNotFound
}

type fakePostcardService struct {
	created   int
	postcards []model.Postcard
}

func (s *fakePostcardService) CreatePostcard(ctx context.Context, userID, imageURL, title, description string, isPublic bool) (*model.Postcard, error) {
	s.created++
	p := model.Postcard{
		ID:        "pc1",
		UserID:    userID,
		ImagePath: acl.NormalizeObjectPath(imageURL),
		Title:     title,
		IsPublic:  isPublic,
	}
	s.postcards = append(s.postcards, p)
	return &p, nil
}

func (s *fakePostcardService) GetUserPostcards(ctx context.Context, userID string) ([]model.Postcard, error) {
	return s.postcards, nil
}

func (s *fakePostcardService) DeletePostcard(ctx context.Context, userID, postcardID string) error {
	return nil
}

func newPostcardFixture(status string) (*fakePostcardService, *PostcardHandler) {
	users := &fakeUserService{users: map[string]*model.User{
		"u1": {ID: "u1", SubscriptionStatus: status},
	}}
	postcards := &fakePostcardService{}
	policy := acl.NewPolicy([]string{"/objects/public"})
	v := validator.New(validator.WithRequiredStructEnabled())
	h := NewPostcardHandler(postcards, users, policy, v, zerolog.Nop())
	return postcards, h
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(r.Context(), middleware.UserContextKey, "u1")
	return r.WithContext(ctx)
}

func TestCreatePostcardInactiveSubscriber(t *testing.T) {
	postcards, h := newPostcardFixture(model.SubscriptionStatusInactive)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/postcards", `{"imageUrl":"key","title":"Card","isPublic":false}`)
	h.handlePostcards(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if postcards.created != 0 {
		t.Fatalf("gated request must not create postcards, got %d", postcards.created)
	}
}

func TestCreatePostcardActiveSubscriber(t *testing.T) {
	postcards, h := newPostcardFixture(model.SubscriptionStatusActive)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/postcards", `{"imageUrl":"private/uploads/u1/abc","title":"Card","isPublic":true}`)
	h.handlePostcards(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if postcards.created != 1 {
		t.Fatalf("expected 1 postcard, got %d", postcards.created)
	}
}

func TestCreatePostcardValidation(t *testing.T) {
	postcards, h := newPostcardFixture(model.SubscriptionStatusActive)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/postcards", `{"title":"no image"}`)
	h.handlePostcards(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if postcards.created != 0 {
		t.Fatal("invalid request must not create postcards")
	}
}

func TestDeletePostcardInactiveSubscriber(t *testing.T) {
	_, h := newPostcardFixture(model.SubscriptionStatusInactive)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodDelete, "/postcards/pc1", "")
	h.deletePostcard(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestListPostcardsInactiveSubscriber(t *testing.T) {
	_, h := newPostcardFixture(model.SubscriptionStatusPastDue)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/postcards", "")
	h.handlePostcards(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
