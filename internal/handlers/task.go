package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/avilaj/tablero-api/internal/services"
	"github.com/avilaj/tablero-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TaskHandler struct {
	taskService  TaskServiceInterface
	boardService BoardServiceInterface
	hub          HubInterface
}

func NewTaskHandler(taskService TaskServiceInterface, boardService BoardServiceInterface, hub HubInterface) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		boardService: boardService,
		hub:          hub,
	}
}

func taskResponse(t *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		BoardID:     t.BoardID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Position:    t.Position,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *TaskHandler) List(c *drift.Context) {
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

	tasks, err := h.taskService.ListByBoard(ctx, boardID)
	if err != nil {
		c.InternalServerError("failed to get tasks")
		return
	}

	response := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = taskResponse(&tasks[i])
	}

	_ = c.JSON(200, response)
}

func (h *TaskHandler) Create(c *drift.Context) {
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

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	task, err := h.taskService.Create(ctx, boardID, req.Title, req.Description, req.Status, req.AssigneeID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTaskStatus) {
			c.BadRequest("invalid task status")
			return
		}
		c.InternalServerError("failed to create task")
		return
	}

	h.hub.BroadcastTaskCreated(task, userID)

	_ = c.JSON(201, taskResponse(task))
}

// resolveTask loads the task and verifies the caller can see its board.
// Tasks on inaccessible boards report not found, never forbidden.
func (h *TaskHandler) resolveTask(c *drift.Context, ctx context.Context, userID uuid.UUID) (*models.Task, bool) {
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.BadRequest("invalid task id")
		return nil, false
	}

	task, err := h.taskService.GetByID(ctx, taskID)
	if err != nil {
		c.NotFound("task not found")
		return nil, false
	}

	hasAccess, err := h.boardService.HasAccess(ctx, task.BoardID, userID)
	if err != nil || !hasAccess {
		c.NotFound("task not found")
		return nil, false
	}

	return task, true
}

func (h *TaskHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := context.Background()

	task, ok := h.resolveTask(c, ctx, userID)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == nil && req.Description == nil && req.AssigneeID == nil {
		c.BadRequest("nothing to update")
		return
	}

	if req.Title != nil && *req.Title == "" {
		c.BadRequest("title cannot be empty")
		return
	}

	updated, err := h.taskService.Update(ctx, task.ID, req.Title, req.Description, req.AssigneeID)
	if err != nil {
		c.InternalServerError("failed to update task")
		return
	}

	h.hub.BroadcastTaskUpdated(updated, userID)

	_ = c.JSON(200, taskResponse(updated))
}

func (h *TaskHandler) Move(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := context.Background()

	task, ok := h.resolveTask(c, ctx, userID)
	if !ok {
		return
	}

	var req dto.MoveTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	moved, err := h.taskService.Move(ctx, task.ID, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTaskStatus) {
			c.BadRequest("invalid task status")
			return
		}
		c.InternalServerError("failed to move task")
		return
	}

	h.hub.BroadcastTaskMoved(moved, userID)

	_ = c.JSON(200, taskResponse(moved))
}

func (h *TaskHandler) Place(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := context.Background()

	task, ok := h.resolveTask(c, ctx, userID)
	if !ok {
		return
	}

	var req dto.PlaceTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Position < 0 {
		c.BadRequest("position cannot be negative")
		return
	}

	placed, err := h.taskService.SetStatusAndPosition(ctx, task.ID, req.Status, req.Position)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTaskStatus) {
			c.BadRequest("invalid task status")
			return
		}
		c.InternalServerError("failed to place task")
		return
	}

	h.hub.BroadcastTaskMoved(placed, userID)

	_ = c.JSON(200, taskResponse(placed))
}

func (h *TaskHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := context.Background()

	task, ok := h.resolveTask(c, ctx, userID)
	if !ok {
		return
	}

	if err := h.taskService.Delete(ctx, task.ID); err != nil {
		c.InternalServerError("failed to delete task")
		return
	}

	h.hub.BroadcastTaskDeleted(task.BoardID, task.ID, userID)

	_ = c.JSON(200, map[string]string{"message": "task deleted"})
}
