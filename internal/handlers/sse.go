package handlers

import (
	"context"
	"fmt"

	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type SSEHandler struct {
	hub          HubInterface
	boardService BoardServiceInterface
}

func NewSSEHandler(hub HubInterface, boardService BoardServiceInterface) *SSEHandler {
	return &SSEHandler{
		hub:          hub,
		boardService: boardService,
	}
}

// Connect opens the event stream. The caller lands subscribed to the
// board named in the path and also receives its own direct events
// (invitations) over the same connection.
func (h *SSEHandler) Connect(c *drift.Context) {
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

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Boards: map[uuid.UUID]bool{boardID: true},
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// ConnectUser opens a board-less stream for users who only want their
// invitation inbox updated live, e.g. on the dashboard.
func (h *SSEHandler) ConnectUser(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Boards: make(map[uuid.UUID]bool),
		Send:   make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *SSEHandler) Subscribe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
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

	h.hub.SubscribeToBoard(clientID, boardID)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("subscribed to board %s", boardID),
	})
}

func (h *SSEHandler) Unsubscribe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	boardID, err := uuid.Parse(c.Param("boardId"))
	if err != nil {
		c.BadRequest("invalid board id")
		return
	}

	h.hub.UnsubscribeFromBoard(clientID, boardID)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("unsubscribed from board %s", boardID),
	})
}
