package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"app/internal/acl"
	"app/internal/api/v1/dto"
	"app/internal/model"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// PostcardHandler exposes the postcard CRUD endpoints. Creation and
// listing are reserved for active subscribers.
type PostcardHandler struct {
	postcards service.PostcardService
	gate      *subscriberGate
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewPostcardHandler(postcards service.PostcardService, users service.UserService, policy *acl.Policy, v *validator.Validate, logger zerolog.Logger) *PostcardHandler {
	return &PostcardHandler{
		postcards: postcards,
		gate:      &subscriberGate{users: users, policy: policy},
		validate:  v,
		logger:    logger,
	}
}

// RegisterRoutes registers the postcard endpoints.
func (h *PostcardHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/postcards", authMw(http.HandlerFunc(h.handlePostcards)))
	mux.Handle("/postcards/", authMw(http.HandlerFunc(h.deletePostcard)))
}

func (h *PostcardHandler) handlePostcards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listPostcards(w, r)
	case http.MethodPost:
		h.createPostcard(w, r)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PostcardHandler) listPostcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.gate.requireSubscriber(w, r)
	if !ok {
		return
	}

	postcards, err := h.postcards.GetUserPostcards(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list postcards")
		http.Error(w, "failed to retrieve postcards", http.StatusInternalServerError)
		return
	}

	resp := make([]dto.PostcardResponseDTO, 0, len(postcards))
	for _, p := range postcards {
		resp = append(resp, postcardToDTO(&p))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *PostcardHandler) createPostcard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.gate.requireSubscriber(w, r)
	if !ok {
		return
	}

	var req dto.PostcardCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	postcard, err := h.postcards.CreatePostcard(r.Context(), userID, req.ImageURL, req.Title, req.Description, req.IsPublic)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create postcard")
		http.Error(w, "failed to create postcard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(postcardToDTO(postcard))
}

func (h *PostcardHandler) deletePostcard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.gate.requireSubscriber(w, r)
	if !ok {
		return
	}

	postcardID := strings.TrimPrefix(r.URL.Path, "/postcards/")
	if postcardID == "" || strings.Contains(postcardID, "/") {
		http.NotFound(w, r)
		return
	}

	if err := h.postcards.DeletePostcard(r.Context(), userID, postcardID); err != nil {
		if errors.Is(err, service.ErrPostcardNotFound) {
			http.Error(w, "postcard not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("postcard_id", postcardID).Msg("Failed to delete postcard")
		http.Error(w, "failed to delete postcard", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func postcardToDTO(p *model.Postcard) dto.PostcardResponseDTO {
	return dto.PostcardResponseDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		ImagePath:   p.ImagePath,
		Title:       p.Title,
		Description: p.Description,
		IsPublic:    p.IsPublic,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
