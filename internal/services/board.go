package services

import (
	"context"
	"errors"

	"github.com/avilaj/tablero-api/internal/database"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/google/uuid"
)

var ErrBoardNotFound = errors.New("board not found")

type BoardService struct {
	db *database.DB
}

func NewBoardService(db *database.DB) *BoardService {
	return &BoardService{db: db}
}

func (s *BoardService) Create(ctx context.Context, name string, description *string, ownerID uuid.UUID) (*models.Board, error) {
	var board models.Board
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO boards (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, owner_id, active, created_at, updated_at
	`, name, description, ownerID).Scan(
		&board.ID, &board.Name, &board.Description, &board.OwnerID,
		&board.Active, &board.CreatedAt, &board.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (s *BoardService) GetByID(ctx context.Context, boardID uuid.UUID) (*models.Board, error) {
	var board models.Board
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, owner_id, active, created_at, updated_at
		FROM boards WHERE id = $1 AND active
	`, boardID).Scan(
		&board.ID, &board.Name, &board.Description, &board.OwnerID,
		&board.Active, &board.CreatedAt, &board.UpdatedAt,
	)
	if err != nil {
		return nil, ErrBoardNotFound
	}
	return &board, nil
}

// GetUserBoards returns every active board the user owns or joined,
// newest first.
func (s *BoardService) GetUserBoards(ctx context.Context, userID uuid.UUID) ([]models.Board, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT DISTINCT b.id, b.name, b.description, b.owner_id, b.active, b.created_at, b.updated_at
		FROM boards b
		LEFT JOIN board_members bm ON b.id = bm.board_id
		WHERE b.active AND (b.owner_id = $1 OR bm.user_id = $1)
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []models.Board
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.OwnerID, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, nil
}

func (s *BoardService) Update(ctx context.Context, boardID uuid.UUID, name *string, description *string) (*models.Board, error) {
	var board models.Board
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE boards SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			updated_at = NOW()
		WHERE id = $3 AND active
		RETURNING id, name, description, owner_id, active, created_at, updated_at
	`, name, description, boardID).Scan(
		&board.ID, &board.Name, &board.Description, &board.OwnerID,
		&board.Active, &board.CreatedAt, &board.UpdatedAt,
	)
	if err != nil {
		return nil, ErrBoardNotFound
	}
	return &board, nil
}

// Delete deactivates the board. Rows stay in place so tasks, members and
// invitation history survive the delete.
func (s *BoardService) Delete(ctx context.Context, boardID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE boards SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active
	`, boardID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrBoardNotFound
	}
	return nil
}

func (s *BoardService) IsOwner(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var ownerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT owner_id FROM boards WHERE id = $1 AND active
	`, boardID).Scan(&ownerID)
	if err != nil {
		return false, ErrBoardNotFound
	}
	return ownerID == userID, nil
}

func (s *BoardService) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM board_members WHERE board_id = $1 AND user_id = $2)
	`, boardID, userID).Scan(&exists)
	return exists, err
}

// HasAccess reports whether the user may see the board: the board must
// be active and the user its owner or a member.
func (s *BoardService) HasAccess(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM boards b
			LEFT JOIN board_members bm ON b.id = bm.board_id AND bm.user_id = $2
			WHERE b.id = $1 AND b.active AND (b.owner_id = $2 OR bm.user_id IS NOT NULL)
		)
	`, boardID, userID).Scan(&exists)
	return exists, err
}

// GetParticipants returns the owner followed by members, for assignee
// pickers and presence rosters.
func (s *BoardService) GetParticipants(ctx context.Context, boardID uuid.UUID) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.avatar_url, u.provider, u.created_at, u.updated_at
		FROM boards b
		JOIN users u ON u.id = b.owner_id
		WHERE b.id = $1 AND b.active
		UNION
		SELECT u.id, u.email, u.name, u.avatar_url, u.provider, u.created_at, u.updated_at
		FROM board_members bm
		JOIN users u ON u.id = bm.user_id
		JOIN boards b ON b.id = bm.board_id
		WHERE bm.board_id = $1 AND b.active
		ORDER BY created_at
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Provider, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// GetMembers returns the membership rows with join dates, oldest first.
// The owner is not a row here; ownership lives on the board itself.
func (s *BoardService) GetMembers(ctx context.Context, boardID uuid.UUID) ([]models.BoardMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT bm.id, bm.board_id, bm.user_id, bm.created_at,
		       u.id, u.email, u.name, u.avatar_url, u.provider, u.created_at, u.updated_at
		FROM board_members bm
		JOIN users u ON bm.user_id = u.id
		WHERE bm.board_id = $1
		ORDER BY bm.created_at
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.BoardMember
	for rows.Next() {
		var member models.BoardMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.BoardID, &member.UserID, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.Provider, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, nil
}
