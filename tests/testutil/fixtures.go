package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/avilaj/tablero-api/internal/database"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/avilaj/tablero-api/internal/oauth"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, avatar_url, provider, provider_id, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// CreateBoard creates a test board owned by the given user
func (f *Fixtures) CreateBoard(t *testing.T, owner *models.User, opts ...BoardOption) *models.Board {
	t.Helper()
	f.counter++

	board := &models.Board{
		Name:    fmt.Sprintf("Test Board %d", f.counter),
		OwnerID: owner.ID,
	}

	for _, opt := range opts {
		opt(board)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO boards (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, owner_id, active, created_at, updated_at
	`, board.Name, board.Description, board.OwnerID).Scan(
		&board.ID, &board.Name, &board.Description,
		&board.OwnerID, &board.Active, &board.CreatedAt, &board.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create board: %v", err)
	}

	return board
}

// BoardOption configures a test board
type BoardOption func(*models.Board)

// WithBoardName sets the board name
func WithBoardName(name string) BoardOption {
	return func(b *models.Board) {
		b.Name = name
	}
}

// WithDescription sets the board description
func WithDescription(desc string) BoardOption {
	return func(b *models.Board) {
		b.Description = &desc
	}
}

// AddBoardMember adds a member to a board
func (f *Fixtures) AddBoardMember(t *testing.T, board *models.Board, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO board_members (board_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (board_id, user_id) DO NOTHING
	`, board.ID, user.ID)
	if err != nil {
		t.Fatalf("failed to add board member: %v", err)
	}
}

// CreateTask creates a test task on a board
func (f *Fixtures) CreateTask(t *testing.T, board *models.Board, opts ...TaskOption) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		BoardID: board.ID,
		Title:   fmt.Sprintf("Test Task %d", f.counter),
		Status:  models.TaskStatusNotStarted,
	}

	for _, opt := range opts {
		opt(task)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (board_id, title, description, status, position, assignee_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, board_id, title, description, status, position, assignee_id, created_at, updated_at
	`, task.BoardID, task.Title, task.Description, task.Status, task.Position, task.AssigneeID).Scan(
		&task.ID, &task.BoardID, &task.Title, &task.Description,
		&task.Status, &task.Position, &task.AssigneeID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// TaskOption configures a test task
type TaskOption func(*models.Task)

// WithTitle sets the task title
func WithTitle(title string) TaskOption {
	return func(t *models.Task) {
		t.Title = title
	}
}

// WithStatus sets the task status
func WithStatus(status string) TaskOption {
	return func(t *models.Task) {
		t.Status = status
	}
}

// WithPosition sets the task position
func WithPosition(position int) TaskOption {
	return func(t *models.Task) {
		t.Position = position
	}
}

// WithAssignee sets the task assignee
func WithAssignee(user *models.User) TaskOption {
	return func(t *models.Task) {
		t.AssigneeID = &user.ID
	}
}

// CreateInvitation creates a pending invitation from inviter to invitee
func (f *Fixtures) CreateInvitation(t *testing.T, board *models.Board, inviter, invitee *models.User) *models.BoardInvitation {
	t.Helper()

	invite := &models.BoardInvitation{
		BoardID:     board.ID,
		InviterID:   inviter.ID,
		InviteeID:   invitee.ID,
		InviterName: inviter.Name,
		BoardName:   board.Name,
		Status:      models.InvitationStatusPending,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO board_invitations (board_id, inviter_id, invitee_id, inviter_name, board_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, board_id, inviter_id, invitee_id, inviter_name, board_name, status, created_at, updated_at
	`, invite.BoardID, invite.InviterID, invite.InviteeID, invite.InviterName, invite.BoardName, invite.Status).Scan(
		&invite.ID, &invite.BoardID, &invite.InviterID, &invite.InviteeID,
		&invite.InviterName, &invite.BoardName, &invite.Status,
		&invite.CreatedAt, &invite.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	return invite
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, name, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  provider,
	}
}
