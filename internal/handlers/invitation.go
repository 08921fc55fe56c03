package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/avilaj/tablero-api/internal/services"
	"github.com/avilaj/tablero-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type InvitationHandler struct {
	invitationService InvitationServiceInterface
	boardService      BoardServiceInterface
	userService       UserServiceInterface
	emailService      EmailServiceInterface
	hub               HubInterface
	frontendURL       string
}

func NewInvitationHandler(
	invitationService InvitationServiceInterface,
	boardService BoardServiceInterface,
	userService UserServiceInterface,
	emailService EmailServiceInterface,
	hub HubInterface,
	frontendURL string,
) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		boardService:      boardService,
		userService:       userService,
		emailService:      emailService,
		hub:               hub,
		frontendURL:       frontendURL,
	}
}

func invitationResponse(inv *models.BoardInvitation) dto.InvitationResponse {
	resp := dto.InvitationResponse{
		ID:          inv.ID,
		BoardID:     inv.BoardID,
		InviterName: inv.InviterName,
		BoardName:   inv.BoardName,
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.Invitee != nil {
		resp.Invitee = &dto.UserResponse{
			ID:        inv.Invitee.ID,
			Email:     inv.Invitee.Email,
			Name:      inv.Invitee.Name,
			AvatarURL: inv.Invitee.AvatarURL,
			Provider:  inv.Invitee.Provider,
		}
	}
	return resp
}

func (h *InvitationHandler) Create(c *drift.Context) {
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
		c.Forbidden("only the board owner can invite members")
		return
	}

	var req dto.InviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" {
		c.BadRequest("email is required")
		return
	}

	invitee, err := h.userService.GetByEmail(ctx, req.Email)
	if err != nil {
		c.NotFound("no user with that email")
		return
	}

	invite, err := h.invitationService.Create(ctx, boardID, userID, invitee.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfInvite):
			_ = c.JSON(409, map[string]string{
				"code":    "SELF_INVITE",
				"message": "you cannot invite yourself",
			})
		case errors.Is(err, services.ErrAlreadyMember):
			_ = c.JSON(409, map[string]string{
				"code":    "ALREADY_MEMBER",
				"message": "user is already a member of this board",
			})
		case errors.Is(err, services.ErrInvitePending):
			_ = c.JSON(409, map[string]string{
				"code":    "INVITE_PENDING",
				"message": "an invitation for this user is already pending",
			})
		case errors.Is(err, services.ErrNotBoardOwner):
			c.Forbidden("only the board owner can invite members")
		case errors.Is(err, services.ErrBoardNotFound):
			c.NotFound("board not found")
		default:
			c.InternalServerError("failed to create invitation")
		}
		return
	}

	h.hub.NotifyInvitationReceived(invitee.ID, invite)

	if h.emailService.IsConfigured() {
		inviteURL := fmt.Sprintf("%s/invitations", h.frontendURL)
		go func() {
			_ = h.emailService.SendBoardInvite(invitee.Email, invite.BoardName, invite.InviterName, inviteURL)
		}()
	}

	_ = c.JSON(201, invitationResponse(invite))
}

func (h *InvitationHandler) ListMine(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	invites, err := h.invitationService.GetUserPendingInvitations(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get invitations")
		return
	}

	response := make([]dto.InvitationResponse, len(invites))
	for i := range invites {
		response[i] = invitationResponse(&invites[i])
	}

	_ = c.JSON(200, response)
}

func (h *InvitationHandler) ListForBoard(c *drift.Context) {
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
		c.Forbidden("only the board owner can view pending invitations")
		return
	}

	invites, err := h.invitationService.GetBoardPendingInvitations(ctx, boardID)
	if err != nil {
		c.InternalServerError("failed to get invitations")
		return
	}

	response := make([]dto.InvitationResponse, len(invites))
	for i := range invites {
		response[i] = invitationResponse(&invites[i])
	}

	_ = c.JSON(200, response)
}

func (h *InvitationHandler) Accept(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteID, err := uuid.Parse(c.Param("invitationId"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	ctx := context.Background()

	invite, err := h.invitationService.Accept(ctx, inviteID, userID)
	if err != nil {
		if errors.Is(err, services.ErrInviteNotFound) {
			c.NotFound("invitation not found or already processed")
			return
		}
		c.InternalServerError("failed to accept invitation")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err == nil {
		h.hub.BroadcastMemberJoined(invite.BoardID, user)
	}
	h.hub.NotifyInvitationAccepted(invite.InviterID, invite)

	_ = c.JSON(200, invitationResponse(invite))
}

func (h *InvitationHandler) Reject(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteID, err := uuid.Parse(c.Param("invitationId"))
	if err != nil {
		c.BadRequest("invalid invitation id")
		return
	}

	if err := h.invitationService.Reject(context.Background(), inviteID, userID); err != nil {
		if errors.Is(err, services.ErrInviteNotFound) {
			c.NotFound("invitation not found or already processed")
			return
		}
		c.InternalServerError("failed to reject invitation")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation rejected"})
}
