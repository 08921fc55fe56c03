package dto

import "github.com/google/uuid"

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Provider  string    `json:"provider"`
}

type UpdateUserRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	ExpiresIn int64  `json:"expires_in"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
