package handlers

import (
	"context"
	"time"

	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/avilaj/tablero-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type BoardHandler struct {
	boardService BoardServiceInterface
	hub          HubInterface
}

func NewBoardHandler(boardService BoardServiceInterface, hub HubInterface) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		hub:          hub,
	}
}

func boardResponse(b *models.Board, userID uuid.UUID) dto.BoardResponse {
	return dto.BoardResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		OwnerID:     b.OwnerID,
		IsOwner:     b.OwnerID == userID,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *BoardHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateBoardRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	board, err := h.boardService.Create(context.Background(), req.Name, req.Description, userID)
	if err != nil {
		c.InternalServerError("failed to create board")
		return
	}

	_ = c.JSON(201, boardResponse(board, userID))
}

func (h *BoardHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	boards, err := h.boardService.GetUserBoards(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get boards")
		return
	}

	response := make([]dto.BoardResponse, len(boards))
	for i, b := range boards {
		response[i] = boardResponse(&b, userID)
	}

	_ = c.JSON(200, response)
}

func (h *BoardHandler) Get(c *drift.Context) {
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

	// A board the caller cannot see is indistinguishable from a board
	// that does not exist.
	hasAccess, err := h.boardService.HasAccess(ctx, boardID, userID)
	if err != nil || !hasAccess {
		c.NotFound("board not found")
		return
	}

	board, err := h.boardService.GetByID(ctx, boardID)
	if err != nil {
		c.NotFound("board not found")
		return
	}

	_ = c.JSON(200, boardResponse(board, userID))
}

func (h *BoardHandler) Update(c *drift.Context) {
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

	isOwner, err := h.boardService.IsOwner(ctx, boardID, userID)
	if err != nil || !isOwner {
		c.Forbidden("only the owner can modify this board")
		return
	}

	var req dto.UpdateBoardRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == nil && req.Description == nil {
		c.BadRequest("nothing to update")
		return
	}

	if req.Name != nil && *req.Name == "" {
		c.BadRequest("name cannot be empty")
		return
	}

	board, err := h.boardService.Update(ctx, boardID, req.Name, req.Description)
	if err != nil {
		c.InternalServerError("failed to update board")
		return
	}

	h.hub.BroadcastBoardUpdated(board, userID)

	_ = c.JSON(200, boardResponse(board, userID))
}

func (h *BoardHandler) Delete(c *drift.Context) {
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

	isOwner, err := h.boardService.IsOwner(ctx, boardID, userID)
	if err != nil || !isOwner {
		c.Forbidden("only the owner can delete this board")
		return
	}

	if err := h.boardService.Delete(ctx, boardID); err != nil {
		c.InternalServerError("failed to delete board")
		return
	}

	h.hub.BroadcastBoardDeleted(boardID, userID)

	_ = c.JSON(200, map[string]string{"message": "board deleted"})
}

// GetParticipants lists everyone who can see the board, owner first.
func (h *BoardHandler) GetParticipants(c *drift.Context) {
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

	users, err := h.boardService.GetParticipants(ctx, boardID)
	if err != nil {
		c.InternalServerError("failed to get participants")
		return
	}

	response := make([]dto.UserResponse, len(users))
	for i, u := range users {
		response[i] = dto.UserResponse{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			AvatarURL: u.AvatarURL,
			Provider:  u.Provider,
		}
	}

	_ = c.JSON(200, response)
}

// GetMembers lists the membership rows with join dates, for the owner's
// member-management view. GetParticipants stays the roster for everyone
// with access.
func (h *BoardHandler) GetMembers(c *drift.Context) {
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

	isOwner, err := h.boardService.IsOwner(ctx, boardID, userID)
	if err != nil || !isOwner {
		c.Forbidden("only the owner can manage members")
		return
	}

	members, err := h.boardService.GetMembers(ctx, boardID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	response := make([]dto.BoardMemberResponse, len(members))
	for i, m := range members {
		resp := dto.BoardMemberResponse{
			ID:       m.ID,
			UserID:   m.UserID,
			Role:     models.RoleMember,
			JoinedAt: m.CreatedAt.Format(time.RFC3339),
		}
		if m.User != nil {
			resp.User = dto.UserResponse{
				ID:        m.User.ID,
				Email:     m.User.Email,
				Name:      m.User.Name,
				AvatarURL: m.User.AvatarURL,
				Provider:  m.User.Provider,
			}
		}
		response[i] = resp
	}

	_ = c.JSON(200, response)
}
