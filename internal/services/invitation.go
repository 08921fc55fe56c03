package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avilaj/tablero-api/internal/database"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/google/uuid"
)

var (
	ErrSelfInvite     = errors.New("cannot invite yourself")
	ErrNotBoardOwner  = errors.New("only the board owner can invite")
	ErrAlreadyMember  = errors.New("user is already a board member")
	ErrInvitePending  = errors.New("an invitation for this user is already pending")
	ErrInviteNotFound = errors.New("invitation not found")
)

type InvitationService struct {
	db *database.DB
}

func NewInvitationService(db *database.DB) *InvitationService {
	return &InvitationService{db: db}
}

// Create records a pending invitation. The inviter's name and the
// board's name are copied onto the row so the invitee's inbox stays
// readable even after either is renamed.
func (s *InvitationService) Create(ctx context.Context, boardID, inviterID, inviteeID uuid.UUID) (*models.BoardInvitation, error) {
	if inviterID == inviteeID {
		return nil, ErrSelfInvite
	}

	var boardName string
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT name, owner_id FROM boards WHERE id = $1 AND active
	`, boardID).Scan(&boardName, &ownerID)
	if err != nil {
		return nil, ErrBoardNotFound
	}

	// Only the owner hands out invitations. Members see the board but
	// cannot grow it.
	if ownerID != inviterID {
		return nil, ErrNotBoardOwner
	}

	var isMember bool
	err = s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM board_members WHERE board_id = $1 AND user_id = $2)
	`, boardID, inviteeID).Scan(&isMember)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	var hasPending bool
	err = s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM board_invitations
			WHERE board_id = $1 AND invitee_id = $2 AND status = $3
		)
	`, boardID, inviteeID, models.InvitationStatusPending).Scan(&hasPending)
	if err != nil {
		return nil, err
	}
	if hasPending {
		return nil, ErrInvitePending
	}

	var inviterName string
	err = s.db.Pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, inviterID).Scan(&inviterName)
	if err != nil {
		return nil, fmt.Errorf("failed to load inviter: %w", err)
	}

	var invite models.BoardInvitation
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO board_invitations (board_id, inviter_id, invitee_id, inviter_name, board_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, board_id, inviter_id, invitee_id, inviter_name, board_name, status, created_at, updated_at
	`, boardID, inviterID, inviteeID, inviterName, boardName, models.InvitationStatusPending).Scan(
		&invite.ID, &invite.BoardID, &invite.InviterID, &invite.InviteeID,
		&invite.InviterName, &invite.BoardName, &invite.Status, &invite.CreatedAt, &invite.UpdatedAt,
	)
	if err != nil {
		// The partial unique index on pending rows closes the race
		// between the EXISTS check and the insert.
		return nil, ErrInvitePending
	}
	return &invite, nil
}

// GetUserPendingInvitations lists the caller's invitation inbox,
// newest first.
func (s *InvitationService) GetUserPendingInvitations(ctx context.Context, userID uuid.UUID) ([]models.BoardInvitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, board_id, inviter_id, invitee_id, inviter_name, board_name, status, created_at, updated_at
		FROM board_invitations
		WHERE invitee_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, userID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.BoardInvitation
	for rows.Next() {
		var invite models.BoardInvitation
		if err := rows.Scan(
			&invite.ID, &invite.BoardID, &invite.InviterID, &invite.InviteeID,
			&invite.InviterName, &invite.BoardName, &invite.Status, &invite.CreatedAt, &invite.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, nil
}

func (s *InvitationService) GetBoardPendingInvitations(ctx context.Context, boardID uuid.UUID) ([]models.BoardInvitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT bi.id, bi.board_id, bi.inviter_id, bi.invitee_id, bi.inviter_name, bi.board_name, bi.status, bi.created_at, bi.updated_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.created_at, u.updated_at
		FROM board_invitations bi
		JOIN users u ON bi.invitee_id = u.id
		WHERE bi.board_id = $1 AND bi.status = $2
		ORDER BY bi.created_at DESC
	`, boardID, models.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.BoardInvitation
	for rows.Next() {
		var invite models.BoardInvitation
		var invitee models.User
		if err := rows.Scan(
			&invite.ID, &invite.BoardID, &invite.InviterID, &invite.InviteeID,
			&invite.InviterName, &invite.BoardName, &invite.Status, &invite.CreatedAt, &invite.UpdatedAt,
			&invitee.ID, &invitee.Email, &invitee.Name, &invitee.AvatarURL,
			&invitee.Provider, &invitee.CreatedAt, &invitee.UpdatedAt,
		); err != nil {
			return nil, err
		}
		invite.Invitee = &invitee
		invites = append(invites, invite)
	}
	return invites, nil
}

// Accept flips the invitation to accepted and enrolls the invitee as a
// member in one transaction. Any failure to match a pending invitation
// addressed to the caller reports the same not-found error.
func (s *InvitationService) Accept(ctx context.Context, inviteID, userID uuid.UUID) (*models.BoardInvitation, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var invite models.BoardInvitation
	err = tx.QueryRow(ctx, `
		SELECT id, board_id, inviter_id, invitee_id, inviter_name, board_name, status, created_at, updated_at
		FROM board_invitations WHERE id = $1
	`, inviteID).Scan(
		&invite.ID, &invite.BoardID, &invite.InviterID, &invite.InviteeID,
		&invite.InviterName, &invite.BoardName, &invite.Status, &invite.CreatedAt, &invite.UpdatedAt,
	)
	if err != nil {
		return nil, ErrInviteNotFound
	}

	if invite.InviteeID != userID {
		return nil, ErrInviteNotFound
	}

	if invite.Status != models.InvitationStatusPending {
		return nil, ErrInviteNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE board_invitations SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.InvitationStatusAccepted, inviteID)
	if err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO board_members (board_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (board_id, user_id) DO NOTHING
	`, invite.BoardID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	invite.Status = models.InvitationStatusAccepted
	return &invite, nil
}

func (s *InvitationService) Reject(ctx context.Context, inviteID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE board_invitations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND invitee_id = $3 AND status = $4
	`, models.InvitationStatusRejected, inviteID, userID, models.InvitationStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}
