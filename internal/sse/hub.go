package sse

import (
	"encoding/json"
	"sync"

	"github.com/avilaj/tablero-api/internal/models"
	"github.com/google/uuid"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type TaskEvent struct {
	BoardID uuid.UUID    `json:"board_id"`
	Task    *models.Task `json:"task"`
	ActorID uuid.UUID    `json:"actor_id"`
}

type TaskDeletedEvent struct {
	BoardID uuid.UUID `json:"board_id"`
	TaskID  uuid.UUID `json:"task_id"`
	ActorID uuid.UUID `json:"actor_id"`
}

type BoardEvent struct {
	BoardID uuid.UUID     `json:"board_id"`
	Board   *models.Board `json:"board,omitempty"`
	ActorID uuid.UUID     `json:"actor_id"`
}

type MemberJoinedEvent struct {
	BoardID uuid.UUID    `json:"board_id"`
	User    *models.User `json:"user"`
}

type InvitationEvent struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	BoardID      uuid.UUID `json:"board_id"`
	BoardName    string    `json:"board_name"`
	InviterName  string    `json:"inviter_name"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Boards map[uuid.UUID]bool
	Send   chan []byte
}

// Hub fans events out to connected SSE clients. Board events reach
// every client subscribed to that board's room; user events reach every
// connection belonging to that user.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *boardMessage
	direct     chan *userMessage
	mu         sync.RWMutex
}

type boardMessage struct {
	boardID uuid.UUID
	event   Event
}

type userMessage struct {
	userID uuid.UUID
	event  Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *boardMessage, 256),
		direct:     make(chan *userMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.event)
			for _, client := range h.clients {
				if client.Boards[msg.boardID] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()

		case msg := <-h.direct:
			h.mu.RLock()
			data, _ := json.Marshal(msg.event)
			for _, client := range h.clients {
				if client.UserID == msg.userID {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) SubscribeToBoard(clientID string, boardID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Boards[boardID] = true
	}
}

func (h *Hub) UnsubscribeFromBoard(clientID string, boardID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Boards, boardID)
	}
}

func (h *Hub) BroadcastTaskCreated(task *models.Task, actorID uuid.UUID) {
	h.broadcast <- &boardMessage{
		boardID: task.BoardID,
		event:   Event{Type: "task_created", Data: TaskEvent{BoardID: task.BoardID, Task: task, ActorID: actorID}},
	}
}

func (h *Hub) BroadcastTaskUpdated(task *models.Task, actorID uuid.UUID) {
	h.broadcast <- &boardMessage{
		boardID: task.BoardID,
		event:   Event{Type: "task_updated", Data: TaskEvent{BoardID: task.BoardID, Task: task, ActorID: actorID}},
	}
}

func (h *Hub) BroadcastTaskMoved(task *models.Task, actorID uuid.UUID) {
	h.broadcast <- &boardMessage{
		boardID: task.BoardID,
		event:   Event{Type: "task_moved", Data: TaskEvent{BoardID: task.BoardID, Task: task, ActorID: actorID}},
	}
}

func (h *Hub) BroadcastTaskDeleted(boardID, taskID, actorID uuid.UUID) {
	h.broadcast <- &boardMessage{
		boardID: boardID,
		event:   Event{Type: "task_deleted", Data: TaskDeletedEvent{BoardID: boardID, TaskID: taskID, ActorID: actorID}},
	}
}

func (h *Hub) BroadcastBoardUpdated(board *models.Board, actorID uuid.UUID) {
	h.broadcast <- &boardMessage{
		boardID: board.ID,
		event:   Event{Type: "board_updated", Data: BoardEvent{BoardID: board.ID, Board: board, ActorID: actorID}},
	}
}

func (h *Hub) BroadcastBoardDeleted(boardID, actorID uuid.UUID) {
	h.broadcast <- &boardMessage{
		boardID: boardID,
		event:   Event{Type: "board_deleted", Data: BoardEvent{BoardID: boardID, ActorID: actorID}},
	}
}

func (h *Hub) BroadcastMemberJoined(boardID uuid.UUID, user *models.User) {
	h.broadcast <- &boardMessage{
		boardID: boardID,
		event:   Event{Type: "member_joined", Data: MemberJoinedEvent{BoardID: boardID, User: user}},
	}
}

func (h *Hub) NotifyInvitationReceived(inviteeID uuid.UUID, invite *models.BoardInvitation) {
	h.direct <- &userMessage{
		userID: inviteeID,
		event: Event{Type: "invitation_received", Data: InvitationEvent{
			InvitationID: invite.ID,
			BoardID:      invite.BoardID,
			BoardName:    invite.BoardName,
			InviterName:  invite.InviterName,
		}},
	}
}

func (h *Hub) NotifyInvitationAccepted(inviterID uuid.UUID, invite *models.BoardInvitation) {
	h.direct <- &userMessage{
		userID: inviterID,
		event: Event{Type: "invitation_accepted", Data: InvitationEvent{
			InvitationID: invite.ID,
			BoardID:      invite.BoardID,
			BoardName:    invite.BoardName,
			InviterName:  invite.InviterName,
		}},
	}
}
