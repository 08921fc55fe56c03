package testutil

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
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL *string) (*models.User, error) {
	args := m.Called(ctx, id, name, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockBoardService mocks the BoardService
type MockBoardService struct {
	mock.Mock
}

func (m *MockBoardService) Create(ctx context.Context, name string, description *string, ownerID uuid.UUID) (*models.Board, error) {
	args := m.Called(ctx, name, description, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Board), args.Error(1)
}

func (m *MockBoardService) GetByID(ctx context.Context, boardID uuid.UUID) (*models.Board, error) {
	args := m.Called(ctx, boardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Board), args.Error(1)
}

func (m *MockBoardService) GetUserBoards(ctx context.Context, userID uuid.UUID) ([]models.Board, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Board), args.Error(1)
}

func (m *MockBoardService) Update(ctx context.Context, boardID uuid.UUID, name *string, description *string) (*models.Board, error) {
	args := m.Called(ctx, boardID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Board), args.Error(1)
}

func (m *MockBoardService) Delete(ctx context.Context, boardID uuid.UUID) error {
	args := m.Called(ctx, boardID)
	return args.Error(0)
}

func (m *MockBoardService) IsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, boardID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBoardService) HasAccess(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, boardID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBoardService) GetParticipants(ctx context.Context, boardID uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockBoardService) GetMembers(ctx context.Context, boardID uuid.UUID) ([]models.BoardMember, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]models.BoardMember), args.Error(1)
}

// MockTaskService mocks the TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskService) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, boardID uuid.UUID, title string, description *string, status string, assigneeID *uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, boardID, title, description, status, assigneeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, taskID uuid.UUID, title *string, description *string, assigneeID *uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, taskID, title, description, assigneeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Move(ctx context.Context, taskID uuid.UUID, status string) (*models.Task, error) {
	args := m.Called(ctx, taskID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) SetStatusAndPosition(ctx context.Context, taskID uuid.UUID, status string, position int) (*models.Task, error) {
	args := m.Called(ctx, taskID, status, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

// MockInvitationService mocks the InvitationService
type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Create(ctx context.Context, boardID, inviterID, inviteeID uuid.UUID) (*models.BoardInvitation, error) {
	args := m.Called(ctx, boardID, inviterID, inviteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BoardInvitation), args.Error(1)
}

func (m *MockInvitationService) GetUserPendingInvitations(ctx context.Context, userID uuid.UUID) ([]models.BoardInvitation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.BoardInvitation), args.Error(1)
}

func (m *MockInvitationService) GetBoardPendingInvitations(ctx context.Context, boardID uuid.UUID) ([]models.BoardInvitation, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]models.BoardInvitation), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, inviteID, userID uuid.UUID) (*models.BoardInvitation, error) {
	args := m.Called(ctx, inviteID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BoardInvitation), args.Error(1)
}

func (m *MockInvitationService) Reject(ctx context.Context, inviteID, userID uuid.UUID) error {
	args := m.Called(ctx, inviteID, userID)
	return args.Error(0)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error) {
	args := m.Called(userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockHub mocks the SSE hub
type MockHub struct {
	mock.Mock
}

func (m *MockHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) SubscribeToBoard(clientID string, boardID uuid.UUID) {
	m.Called(clientID, boardID)
}

func (m *MockHub) UnsubscribeFromBoard(clientID string, boardID uuid.UUID) {
	m.Called(clientID, boardID)
}

func (m *MockHub) BroadcastTaskCreated(task *models.Task, actorID uuid.UUID) {
	m.Called(task, actorID)
}

func (m *MockHub) BroadcastTaskUpdated(task *models.Task, actorID uuid.UUID) {
	m.Called(task, actorID)
}

func (m *MockHub) BroadcastTaskMoved(task *models.Task, actorID uuid.UUID) {
	m.Called(task, actorID)
}

func (m *MockHub) BroadcastTaskDeleted(boardID, taskID, actorID uuid.UUID) {
	m.Called(boardID, taskID, actorID)
}

func (m *MockHub) BroadcastBoardUpdated(board *models.Board, actorID uuid.UUID) {
	m.Called(board, actorID)
}

func (m *MockHub) BroadcastBoardDeleted(boardID, actorID uuid.UUID) {
	m.Called(boardID, actorID)
}

func (m *MockHub) BroadcastMemberJoined(boardID uuid.UUID, user *models.User) {
	m.Called(boardID, user)
}

func (m *MockHub) NotifyInvitationReceived(inviteeID uuid.UUID, invite *models.BoardInvitation) {
	m.Called(inviteeID, invite)
}

func (m *MockHub) NotifyInvitationAccepted(inviterID uuid.UUID, invite *models.BoardInvitation) {
	m.Called(inviterID, invite)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmailService) SendBoardInvite(to, boardName, inviterName, inviteURL string) error {
	args := m.Called(to, boardName, inviterName, inviteURL)
	return args.Error(0)
}

// MockStorageService mocks the StorageService
type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) GenerateUploadToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) ConsumeUploadToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockStorageService) Save(contentType string, body io.Reader) (string, error) {
	args := m.Called(contentType, body)
	return args.String(0), args.Error(1)
}

// MockPresenceService mocks the presence Service
type MockPresenceService struct {
	mock.Mock
}

func (m *MockPresenceService) Heartbeat(ctx context.Context, boardID uuid.UUID, sessionID string, user *models.User) error {
	args := m.Called(ctx, boardID, sessionID, user)
	return args.Error(0)
}

func (m *MockPresenceService) List(ctx context.Context, boardID uuid.UUID) ([]presence.Entry, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]presence.Entry), args.Error(1)
}

func (m *MockPresenceService) Disconnect(ctx context.Context, boardID uuid.UUID, sessionID string) error {
	args := m.Called(ctx, boardID, sessionID)
	return args.Error(0)
}

// MockOAuthProvider mocks an OAuth provider
type MockOAuthProvider struct {
	mock.Mock
}

func (m *MockOAuthProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *MockOAuthProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
