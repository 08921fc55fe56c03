package handlers

import (
	"context"
	"io"
	"time"

	"github.com/avilaj/tablero-api/internal/models"
	"github.com/avilaj/tablero-api/internal/oauth"
	"github.com/avilaj/tablero-api/internal/presence"
	"github.com/avilaj/tablero-api/internal/services"
	"github.com/avilaj/tablero-api/internal/sse"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL *string) (*models.User, error)
}

// BoardServiceInterface defines the methods used by handlers from BoardService
type BoardServiceInterface interface {
	Create(ctx context.Context, name string, description *string, ownerID uuid.UUID) (*models.Board, error)
	GetByID(ctx context.Context, boardID uuid.UUID) (*models.Board, error)
	GetUserBoards(ctx context.Context, userID uuid.UUID) ([]models.Board, error)
	Update(ctx context.Context, boardID uuid.UUID, name *string, description *string) (*models.Board, error)
	Delete(ctx context.Context, boardID uuid.UUID) error
	IsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	HasAccess(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
	GetParticipants(ctx context.Context, boardID uuid.UUID) ([]models.User, error)
	GetMembers(ctx context.Context, boardID uuid.UUID) ([]models.BoardMember, error)
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error)
	GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, boardID uuid.UUID, title string, description *string, status string, assigneeID *uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, taskID uuid.UUID, title *string, description *string, assigneeID *uuid.UUID) (*models.Task, error)
	Move(ctx context.Context, taskID uuid.UUID, status string) (*models.Task, error)
	SetStatusAndPosition(ctx context.Context, taskID uuid.UUID, status string, position int) (*models.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
}

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	Create(ctx context.Context, boardID, inviterID, inviteeID uuid.UUID) (*models.BoardInvitation, error)
	GetUserPendingInvitations(ctx context.Context, userID uuid.UUID) ([]models.BoardInvitation, error)
	GetBoardPendingInvitations(ctx context.Context, boardID uuid.UUID) ([]models.BoardInvitation, error)
	Accept(ctx context.Context, inviteID, userID uuid.UUID) (*models.BoardInvitation, error)
	Reject(ctx context.Context, inviteID, userID uuid.UUID) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// HubInterface defines the methods used by handlers from the Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	SubscribeToBoard(clientID string, boardID uuid.UUID)
	UnsubscribeFromBoard(clientID string, boardID uuid.UUID)
	BroadcastTaskCreated(task *models.Task, actorID uuid.UUID)
	BroadcastTaskUpdated(task *models.Task, actorID uuid.UUID)
	BroadcastTaskMoved(task *models.Task, actorID uuid.UUID)
	BroadcastTaskDeleted(boardID, taskID, actorID uuid.UUID)
	BroadcastBoardUpdated(board *models.Board, actorID uuid.UUID)
	BroadcastBoardDeleted(boardID, actorID uuid.UUID)
	BroadcastMemberJoined(boardID uuid.UUID, user *models.User)
	NotifyInvitationReceived(inviteeID uuid.UUID, invite *models.BoardInvitation)
	NotifyInvitationAccepted(inviterID uuid.UUID, invite *models.BoardInvitation)
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	IsConfigured() bool
	SendBoardInvite(to, boardName, inviterName, inviteURL string) error
}

// StorageServiceInterface defines the methods used by handlers from StorageService
type StorageServiceInterface interface {
	GenerateUploadToken(userID uuid.UUID) (string, error)
	ConsumeUploadToken(token string) (uuid.UUID, error)
	Save(contentType string, body io.Reader) (string, error)
}

// PresenceServiceInterface defines the methods used by handlers from the presence Service
type PresenceServiceInterface interface {
	Heartbeat(ctx context.Context, boardID uuid.UUID, sessionID string, user *models.User) error
	List(ctx context.Context, boardID uuid.UUID) ([]presence.Entry, error)
	Disconnect(ctx context.Context, boardID uuid.UUID, sessionID string) error
}
