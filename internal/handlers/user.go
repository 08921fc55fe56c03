package handlers

import (
	"context"
	"fmt"

	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService    UserServiceInterface
	storageService StorageServiceInterface
	baseURL        string
	uploadExpiry   int64
}

func NewUserHandler(userService UserServiceInterface, storageService StorageServiceInterface, baseURL string, uploadExpirySeconds int64) *UserHandler {
	return &UserHandler{
		userService:    userService,
		storageService: storageService,
		baseURL:        baseURL,
		uploadExpiry:   uploadExpirySeconds,
	}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	_ = c.JSON(200, dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Provider:  user.Provider,
	})
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == nil && req.AvatarURL == nil {
		c.BadRequest("nothing to update")
		return
	}

	if req.Name != nil && *req.Name == "" {
		c.BadRequest("name cannot be empty")
		return
	}

	user, err := h.userService.UpdateProfile(context.Background(), userID, req.Name, req.AvatarURL)
	if err != nil {
		c.InternalServerError("failed to update user")
		return
	}

	_ = c.JSON(200, dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Provider:  user.Provider,
	})
}

// GenerateUploadURL hands out a short-lived URL for a profile image
// upload. The token in the URL is single use.
func (h *UserHandler) GenerateUploadURL(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	token, err := h.storageService.GenerateUploadToken(userID)
	if err != nil {
		c.InternalServerError("failed to generate upload token")
		return
	}

	_ = c.JSON(200, dto.UploadURLResponse{
		UploadURL: fmt.Sprintf("%s/api/v1/uploads?token=%s", h.baseURL, token),
		ExpiresIn: h.uploadExpiry,
	})
}

// Upload receives the image bytes at the URL from GenerateUploadURL.
// No auth header here: the token carries the identity.
func (h *UserHandler) Upload(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		c.Unauthorized("missing upload token")
		return
	}

	if _, err := h.storageService.ConsumeUploadToken(token); err != nil {
		c.Unauthorized("invalid or expired upload token")
		return
	}

	contentType := c.GetHeader("Content-Type")
	fileURL, err := h.storageService.Save(contentType, c.Request.Body)
	if err != nil {
		c.BadRequest("failed to store image: " + err.Error())
		return
	}

	_ = c.JSON(201, dto.UploadResponse{URL: fileURL})
}
