package dto

import "time"

// UploadRequestDTO asks for a signed upload URL. IsPublic is accepted
// for interface compatibility; visibility is applied later, when the
// uploaded object becomes a postcard.
type UploadRequestDTO struct {
	ContentType string `json:"contentType" validate:"required"`
	IsPublic    bool   `json:"isPublic"`
}

// UploadResponseDTO carries the signed URL and both path forms. Only
// the normalized path should be persisted; the signed URL expires.
type UploadResponseDTO struct {
	UploadURL      string    `json:"uploadUrl"`
	ObjectPath     string    `json:"objectPath"`
	NormalizedPath string    `json:"normalizedPath"`
	ExpiresAt      time.Time `json:"expiresAt"`
}
