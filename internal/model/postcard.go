package model

import "time"

// Postcard is an uploaded design owned by a user. ImagePath is the
// normalized /objects/... path, never a raw or signed URL. The owner
// never changes after creation.
type Postcard struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	ImagePath   string    `db:"image_path" json:"image_path"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description,omitempty"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SignedUpload is the result of minting a signed upload URL. The
// normalized path is what gets persisted; the signed URL expires.
type SignedUpload struct {
	UploadURL      string    `json:"upload_url"`
	ObjectPath     string    `json:"object_path"`
	NormalizedPath string    `json:"normalized_path"`
	ExpiresAt      time.Time `json:"expires_at"`
}
