package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avilaj/tablero-api/internal/middleware"
	"github.com/avilaj/tablero-api/internal/models"
	"github.com/avilaj/tablero-api/internal/services"
	"github.com/avilaj/tablero-api/pkg/dto"
	"github.com/avilaj/tablero-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTaskTest(t *testing.T) (*testutil.MockTaskService, *testutil.MockBoardService, *testutil.MockHub, *TaskHandler, *services.JWTService) {
	t.Helper()
	mockTaskService := new(testutil.MockTaskService)
	mockBoardService := new(testutil.MockBoardService)
	mockHub := new(testutil.MockHub)
	handler := NewTaskHandler(mockTaskService, mockBoardService, mockHub)
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
	return mockTaskService, mockBoardService, mockHub, handler, jwtSvc
}

func TestTaskHandler_List_Success(t *testing.T) {
	mockTaskService, mockBoardService, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	tasks := []models.Task{
		{ID: uuid.New(), BoardID: boardID, Title: "First", Status: models.TaskStatusNotStarted, Position: 0},
		{ID: uuid.New(), BoardID: boardID, Title: "Second", Status: models.TaskStatusNotStarted, Position: 1},
	}

	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("ListByBoard", mock.Anything, boardID).Return(tasks, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/boards/:boardId/tasks", handler.List)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodGet, "/boards/"+boardID.String()+"/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response []dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Len(t, response, 2)
	assert.Equal(t, "First", response[0].Title)

	mockTaskService.AssertExpectations(t)
	mockBoardService.AssertExpectations(t)
}

func TestTaskHandler_List_NoAccess(t *testing.T) {
	_, mockBoardService, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()

	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(false, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/boards/:boardId/tasks", handler.List)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodGet, "/boards/"+boardID.String()+"/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "board not found")

	mockBoardService.AssertExpectations(t)
}

func TestTaskHandler_Create_Success(t *testing.T) {
	mockTaskService, mockBoardService, mockHub, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	task := &models.Task{
		ID:      uuid.New(),
		BoardID: boardID,
		Title:   "Write docs",
		Status:  models.TaskStatusNotStarted,
	}

	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("Create", mock.Anything, boardID, "Write docs", (*string)(nil), "", (*uuid.UUID)(nil)).Return(task, nil)
	mockHub.On("BroadcastTaskCreated", task, userID).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/boards/:boardId/tasks", handler.Create)

	body := dto.CreateTaskRequest{Title: "Write docs"}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/boards/"+boardID.String()+"/tasks", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var response dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, task.ID, response.ID)
	assert.Equal(t, "Write docs", response.Title)

	mockTaskService.AssertExpectations(t)
	mockHub.AssertExpectations(t)
}

func TestTaskHandler_Create_EmptyTitle(t *testing.T) {
	_, mockBoardService, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()

	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/boards/:boardId/tasks", handler.Create)

	body := dto.CreateTaskRequest{Title: ""}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/boards/"+boardID.String()+"/tasks", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")
}

func TestTaskHandler_Create_InvalidStatus(t *testing.T) {
	mockTaskService, mockBoardService, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()

	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("Create", mock.Anything, boardID, "Bad status", (*string)(nil), "archived", (*uuid.UUID)(nil)).
		Return(nil, services.ErrInvalidTaskStatus)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/boards/:boardId/tasks", handler.Create)

	body := dto.CreateTaskRequest{Title: "Bad status", Status: "archived"}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/boards/"+boardID.String()+"/tasks", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid task status")

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_Update_Success(t *testing.T) {
	mockTaskService, mockBoardService, mockHub, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	taskID := uuid.New()
	newTitle := "Updated title"
	task := &models.Task{ID: taskID, BoardID: boardID, Title: "Old title", Status: models.TaskStatusNotStarted}
	updated := &models.Task{ID: taskID, BoardID: boardID, Title: newTitle, Status: models.TaskStatusNotStarted}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("Update", mock.Anything, taskID, &newTitle, (*string)(nil), (*uuid.UUID)(nil)).Return(updated, nil)
	mockHub.On("BroadcastTaskUpdated", updated, userID).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Patch("/tasks/:taskId", handler.Update)

	body := dto.UpdateTaskRequest{Title: &newTitle}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String(), bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, newTitle, response.Title)

	mockTaskService.AssertExpectations(t)
	mockHub.AssertExpectations(t)
}

func TestTaskHandler_Update_TaskOnInaccessibleBoard(t *testing.T) {
	mockTaskService, mockBoardService, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	taskID := uuid.New()
	newTitle := "Updated title"
	task := &models.Task{ID: taskID, BoardID: boardID, Title: "Old title"}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(false, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Patch("/tasks/:taskId", handler.Update)

	body := dto.UpdateTaskRequest{Title: &newTitle}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String(), bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	// Tasks on hidden boards look like they do not exist
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "task not found")

	mockTaskService.AssertExpectations(t)
	mockBoardService.AssertExpectations(t)
}

func TestTaskHandler_Update_NotFound(t *testing.T) {
	mockTaskService, _, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	taskID := uuid.New()
	newTitle := "Updated title"

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(nil, services.ErrTaskNotFound)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Patch("/tasks/:taskId", handler.Update)

	body := dto.UpdateTaskRequest{Title: &newTitle}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+taskID.String(), bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "task not found")

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_Move_Success(t *testing.T) {
	mockTaskService, mockBoardService, mockHub, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	taskID := uuid.New()
	task := &models.Task{ID: taskID, BoardID: boardID, Title: "Moving", Status: models.TaskStatusNotStarted, Position: 0}
	moved := &models.Task{ID: taskID, BoardID: boardID, Title: "Moving", Status: models.TaskStatusDone, Position: 2}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("Move", mock.Anything, taskID, models.TaskStatusDone).Return(moved, nil)
	mockHub.On("BroadcastTaskMoved", moved, userID).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/tasks/:taskId/move", handler.Move)

	body := dto.MoveTaskRequest{Status: models.TaskStatusDone}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/tasks/"+taskID.String()+"/move", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusDone, response.Status)
	assert.Equal(t, 2, response.Position)

	mockTaskService.AssertExpectations(t)
	mockHub.AssertExpectations(t)
}

func TestTaskHandler_Move_InvalidStatus(t *testing.T) {
	mockTaskService, mockBoardService, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	taskID := uuid.New()
	task := &models.Task{ID: taskID, BoardID: boardID, Title: "Moving"}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("Move", mock.Anything, taskID, "blocked").Return(nil, services.ErrInvalidTaskStatus)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/tasks/:taskId/move", handler.Move)

	body := dto.MoveTaskRequest{Status: "blocked"}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/tasks/"+taskID.String()+"/move", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid task status")

	mockTaskService.AssertExpectations(t)
}

func TestTaskHandler_Place_Success(t *testing.T) {
	mockTaskService, mockBoardService, mockHub, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	taskID := uuid.New()
	task := &models.Task{ID: taskID, BoardID: boardID, Title: "Dragged", Status: models.TaskStatusNotStarted, Position: 0}
	placed := &models.Task{ID: taskID, BoardID: boardID, Title: "Dragged", Status: models.TaskStatusInProgress, Position: 1}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("SetStatusAndPosition", mock.Anything, taskID, models.TaskStatusInProgress, 1).Return(placed, nil)
	mockHub.On("BroadcastTaskMoved", placed, userID).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/tasks/:taskId/place", handler.Place)

	body := dto.PlaceTaskRequest{Status: models.TaskStatusInProgress, Position: 1}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/tasks/"+taskID.String()+"/place", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TaskResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, 1, response.Position)

	mockTaskService.AssertExpectations(t)
	mockHub.AssertExpectations(t)
}

func TestTaskHandler_Place_NegativePosition(t *testing.T) {
	mockTaskService, mockBoardService, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	taskID := uuid.New()
	task := &models.Task{ID: taskID, BoardID: boardID, Title: "Dragged"}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/tasks/:taskId/place", handler.Place)

	body := dto.PlaceTaskRequest{Status: models.TaskStatusInProgress, Position: -1}
	jsonBody, _ := json.Marshal(body)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/tasks/"+taskID.String()+"/place", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "position cannot be negative")
}

func TestTaskHandler_Delete_Success(t *testing.T) {
	mockTaskService, mockBoardService, mockHub, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()
	boardID := uuid.New()
	taskID := uuid.New()
	task := &models.Task{ID: taskID, BoardID: boardID, Title: "Doomed"}

	mockTaskService.On("GetByID", mock.Anything, taskID).Return(task, nil)
	mockBoardService.On("HasAccess", mock.Anything, boardID, userID).Return(true, nil)
	mockTaskService.On("Delete", mock.Anything, taskID).Return(nil)
	mockHub.On("BroadcastTaskDeleted", boardID, taskID, userID).Return()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Delete("/tasks/:taskId", handler.Delete)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+taskID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "task deleted")

	mockTaskService.AssertExpectations(t)
	mockHub.AssertExpectations(t)
}

func TestTaskHandler_Delete_InvalidID(t *testing.T) {
	_, _, _, handler, jwtSvc := setupTaskTest(t)

	userID := uuid.New()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Delete("/tasks/:taskId", handler.Delete)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodDelete, "/tasks/invalid-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid task id")
}
