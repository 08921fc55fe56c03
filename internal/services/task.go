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
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

func (s *TaskService) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, board_id, title, description, status, position, assignee_id, created_at, updated_at
		FROM tasks
		WHERE board_id = $1
		ORDER BY status, position, created_at
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
			&t.Position, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *TaskService) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, board_id, title, description, status, position, assignee_id, created_at, updated_at
		FROM tasks WHERE id = $1
	`, taskID).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
		&t.Position, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

// Create appends the task at the bottom of its status column. The
// position subquery runs inside the INSERT so two concurrent creates
// cannot read the same maximum.
func (s *TaskService) Create(ctx context.Context, boardID uuid.UUID, title string, description *string, status string, assigneeID *uuid.UUID) (*models.Task, error) {
	if status == "" {
		status = models.TaskStatusNotStarted
	}
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	var t models.Task
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (board_id, title, description, status, position, assignee_id)
		VALUES ($1, $2, $3, $4,
			COALESCE((SELECT MAX(position) + 1 FROM tasks WHERE board_id = $1 AND status = $4), 0),
			$5)
		RETURNING id, board_id, title, description, status, position, assignee_id, created_at, updated_at
	`, boardID, title, description, status, assigneeID).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
		&t.Position, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &t, nil
}

// Update touches only the provided fields. Position and status are
// changed through Move and SetStatusAndPosition, never here.
func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, title *string, description *string, assigneeID *uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			assignee_id = COALESCE($3, assignee_id),
			updated_at = NOW()
		WHERE id = $4
		RETURNING id, board_id, title, description, status, position, assignee_id, created_at, updated_at
	`, title, description, assigneeID, taskID).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
		&t.Position, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

// Move drops the task at the bottom of the destination column. The
// task's own row is excluded from the maximum so moving within a
// column sends it to the end instead of past it.
func (s *TaskService) Move(ctx context.Context, taskID uuid.UUID, status string) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	var t models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET
			status = $2,
			position = COALESCE((
				SELECT MAX(t2.position) + 1 FROM tasks t2
				WHERE t2.board_id = tasks.board_id AND t2.status = $2 AND t2.id <> tasks.id
			), 0),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, board_id, title, description, status, position, assignee_id, created_at, updated_at
	`, taskID, status).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
		&t.Position, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

// SetStatusAndPosition places the task exactly where the client's
// drag-and-drop computed it should go.
func (s *TaskService) SetStatusAndPosition(ctx context.Context, taskID uuid.UUID, status string, position int) (*models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}

	var t models.Task
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET status = $2, position = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, board_id, title, description, status, position, assignee_id, created_at, updated_at
	`, taskID, status, position).Scan(
		&t.ID, &t.BoardID, &t.Title, &t.Description, &t.Status,
		&t.Position, &t.AssigneeID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
