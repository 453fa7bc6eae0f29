package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"app/internal/acl"
	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ObjectHandler issues signed upload URLs and serves stored objects.
// storage may be nil when object storage is unconfigured.
type ObjectHandler struct {
	storage  service.ObjectStorage
	policy   *acl.Policy
	gate     *subscriberGate
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewObjectHandler(storage service.ObjectStorage, users service.UserService, policy *acl.Policy, v *validator.Validate, logger zerolog.Logger) *ObjectHandler {
	return &ObjectHandler{
		storage:  storage,
		policy:   policy,
		gate:     &subscriberGate{users: users, policy: policy},
		validate: v,
		logger:   logger,
	}
}

// RegisterRoutes registers the upload endpoint on the API mux.
func (h *ObjectHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/objects/upload", authMw(http.HandlerFunc(h.requestUpload)))
}

// RegisterObjectRoutes registers the object read endpoint on the root
// mux. Reads may be anonymous, so the session is optional.
func (h *ObjectHandler) RegisterObjectRoutes(mux *http.ServeMux, optionalSessionMw func(http.Handler) http.Handler) {
	mux.Handle(acl.ObjectPathPrefix, optionalSessionMw(http.HandlerFunc(h.serveObject)))
}

func (h *ObjectHandler) requestUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := h.gate.requireSubscriber(w, r)
	if !ok {
		return
	}
	if h.storage == nil {
		http.Error(w, service.ErrStorageNotConfigured.Error(), http.StatusInternalServerError)
		return
	}

	var req dto.UploadRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	upload, err := h.storage.CreateSignedUploadURL(r.Context(), userID, req.ContentType)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create signed upload URL")
		http.Error(w, "failed to create upload URL", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.UploadResponseDTO{
		UploadURL:      upload.UploadURL,
		ObjectPath:     upload.ObjectPath,
		NormalizedPath: upload.NormalizedPath,
		ExpiresAt:      upload.ExpiresAt,
	})
}

func (h *ObjectHandler) serveObject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Anonymous requests carry an empty user id; the policy decides.
	userID, _ := r.Context().Value(middleware.UserContextKey).(string)
	objectPath := r.URL.Path

	if !h.policy.CanReadObject(objectPath, userID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if h.storage == nil {
		http.Error(w, service.ErrStorageNotConfigured.Error(), http.StatusInternalServerError)
		return
	}

	body, contentType, err := h.storage.OpenObject(r.Context(), acl.ToBucketKey(objectPath))
	if err != nil {
		if errors.Is(err, service.ErrObjectNotFound) {
			http.Error(w, "object not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("object_path", objectPath).Msg("Failed to open object")
		http.Error(w, "failed to retrieve object", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error().Err(err).Str("object_path", objectPath).Msg("Failed to stream object")
	}
}
