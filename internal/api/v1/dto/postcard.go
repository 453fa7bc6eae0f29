package dto

import "time"

// PostcardCreateDTO is used for incoming create requests.
type PostcardCreateDTO struct {
	ImageURL    string `json:"imageUrl" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=500"`
	IsPublic    bool   `json:"isPublic"`
}

// PostcardResponseDTO is returned in API responses.
type PostcardResponseDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ImagePath   string    `json:"imagePath"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
