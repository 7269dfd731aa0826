package handler

import (
	"errors"
	"net/http"
	"strings"

	"planboard/internal/middleware"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskRepo  repository.TaskRepositoryInterface
	boardRepo repository.BoardRepositoryInterface
}

func NewTaskHandler(taskRepo repository.TaskRepositoryInterface, boardRepo repository.BoardRepositoryInterface) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo, boardRepo: boardRepo}
}

// CreateTaskRequest is the body of POST /api/tasks. Everything but description is required.
type CreateTaskRequest struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         model.Status `json:"status"`
	BoardID        string       `json:"boardId"`
	AuthorUsername string       `json:"authorUsername"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      CreateTaskRequest  true  "Task"
// @Success      201   {object}  model.Task
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	username := middleware.Username(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task := model.Task{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Status:         req.Status,
		BoardID:        req.BoardID,
		AuthorUsername: req.AuthorUsername,
	}
	if err := task.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}
	if task.AuthorUsername != username {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only create tasks as yourself"})
		return
	}
	board, ok := ownedBoard(c, h.boardRepo, task.BoardID, username)
	if !ok {
		return
	}
	task.BoardID = board.ID

	if err := h.taskRepo.Create(c.Request.Context(), &task); err != nil {
		middleware.Logger(c).WithError(err).Error("create task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary      Update task fields
// @Description  Applies only the supplied fields. A missing task answers 500.
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id     path      string           true  "Task ID"
// @Param        patch  body      model.TaskPatch  true  "Fields to change"
// @Success      200    {object}  SuccessResponse
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !model.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	if err := h.taskRepo.Update(c.Request.Context(), id, middleware.Username(c), patch); err != nil {
		middleware.Logger(c).WithError(err).WithField("task_id", id).Error("update task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Delete godoc
// @Summary      Delete a task
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  SuccessResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !model.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), id, middleware.Username(c)); err != nil {
		middleware.Logger(c).WithError(err).WithField("task_id", id).Error("delete task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// GetAll godoc
// @Summary      Dump every task
// @Description  Unfiltered listing for administration. Only registered when EXPOSE_TASK_DUMP is set.
// @Tags         Tasks
// @Produce      json
// @Success      200  {array}   model.Task
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	tasks, err := h.taskRepo.List(c.Request.Context())
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetByBoard godoc
// @Summary      List the tasks of a board
// @Tags         Tasks
// @Produce      json
// @Param        id   path      string  true  "Board ID"
// @Success      200  {array}   model.Task
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/boards/{id}/tasks [get]
func (h *TaskHandler) GetByBoard(c *gin.Context) {
	username := middleware.Username(c)
	board, ok := ownedBoard(c, h.boardRepo, c.Param("id"), username)
	if !ok {
		return
	}

	tasks, err := h.taskRepo.ListByBoard(c.Request.Context(), board.ID, username)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list board tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// ownedBoard loads the board and answers 404 unless it belongs to username.
func ownedBoard(c *gin.Context, boards repository.BoardRepositoryInterface, id, username string) (*model.Board, bool) {
	board, err := boards.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrBoardNotFound) || (err == nil && board.AuthorUsername != username) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil, false
	}
	if err != nil {
		middleware.Logger(c).WithError(err).WithField("board_id", id).Error("load board")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return nil, false
	}
	return board, true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrMissingFields):
		return "Missing required fields"
	case errors.Is(err, model.ErrInvalidStatus):
		return "Invalid status"
	case errors.Is(err, model.ErrEmptyTitle):
		return "Title must not be empty"
	case errors.Is(err, model.ErrEmptyPatch):
		return "No fields to update"
	case errors.Is(err, model.ErrInvalidID):
		return "Invalid ID"
	}
	return "Invalid request"
}
