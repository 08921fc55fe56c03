package handlers

import (
	"context"

	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type PresenceHandler struct {
	presenceService PresenceServiceInterface
	boardService    BoardServiceInterface
	userService     UserServiceInterface
}

func NewPresenceHandler(presenceService PresenceServiceInterface, boardService BoardServiceInterface, userService UserServiceInterface) *PresenceHandler {
	return &PresenceHandler{
		presenceService: presenceService,
		boardService:    boardService,
		userService:     userService,
	}
}

func (h *PresenceHandler) Heartbeat(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		c.BadRequest("invalid board id")
		return
	}

	var req dto.HeartbeatRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.SessionID == "" {
		c.BadRequest("session_id is required")
		return
	}

	ctx := context.Background()

	hasAccess, err := h.boardService.HasAccess(ctx, boardID, userID)
	if err != nil || !hasAccess {
		c.NotFound("board not found")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.InternalServerError("failed to load user")
		return
	}

	if err := h.presenceService.Heartbeat(ctx, boardID, req.SessionID, user); err != nil {
		c.InternalServerError("failed to record heartbeat")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "ok"})
}

func (h *PresenceHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		c.BadRequest("invalid board id")
		return
	}

	ctx := context.Background()

	hasAccess, err := h.boardService.HasAccess(ctx, boardID, userID)
	if err != nil || !hasAccess {
		c.NotFound("board not found")
		return
	}

	entries, err := h.presenceService.List(ctx, boardID)
	if err != nil {
		c.InternalServerError("failed to list presence")
		return
	}

	response := make([]dto.PresenceEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = dto.PresenceEntryResponse{
			SessionID: e.SessionID,
			UserID:    e.UserID,
			Name:      e.Name,
			AvatarURL: e.AvatarURL,
			LastSeen:  e.LastSeen,
		}
	}

	_ = c.JSON(200, response)
}

func (h *PresenceHandler) Disconnect(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		c.BadRequest("invalid board id")
		return
	}

	var req dto.DisconnectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.SessionID == "" {
		c.BadRequest("session_id is required")
		return
	}

	if err := h.presenceService.Disconnect(context.Background(), boardID, req.SessionID); err != nil {
		c.InternalServerError("failed to disconnect")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "disconnected"})
}
