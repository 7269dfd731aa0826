package handler

import (
	"net/http"

	"planboard/internal/middleware"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boardRepo repository.BoardRepositoryInterface
	taskRepo  repository.TaskRepositoryInterface
}

func NewBoardHandler(boardRepo repository.BoardRepositoryInterface, taskRepo repository.TaskRepositoryInterface) *BoardHandler {
	return &BoardHandler{boardRepo: boardRepo, taskRepo: taskRepo}
}

type BoardRequest struct {
	Title string `json:"title"`
}

// BoardResponse is a board together with its tasks.
type BoardResponse struct {
	model.Board
	Tasks []model.Task `json:"tasks"`
}

// Create godoc
// @Summary      Create a board with three demonstration tasks
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Param        board  body      BoardRequest  false  "Board"
// @Success      201    {object}  BoardResponse
// @Failure      500    {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/boards [post]
func (h *BoardHandler) Create(c *gin.Context) {
	var req BoardRequest
	// An empty body creates an untitled board.
	_ = c.ShouldBindJSON(&req)

	board, tasks, err := createBoard(c, h.boardRepo, req.Title)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("create board")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}
	c.JSON(http.StatusCreated, BoardResponse{Board: *board, Tasks: tasks})
}

// GetAll godoc
// @Summary      List own boards, newest first
// @Tags         Boards
// @Produce      json
// @Success      200  {array}   model.Board
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/boards [get]
func (h *BoardHandler) GetAll(c *gin.Context) {
	boards, err := h.boardRepo.ListByOwner(c.Request.Context(), middleware.Username(c))
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list boards")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch boards"})
		return
	}
	c.JSON(http.StatusOK, boards)
}

// GetByID godoc
// @Summary      Get a board with its tasks
// @Tags         Boards
// @Produce      json
// @Param        id   path      string  true  "Board ID"
// @Success      200  {object}  BoardResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/boards/{id} [get]
func (h *BoardHandler) GetByID(c *gin.Context) {
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
	c.JSON(http.StatusOK, BoardResponse{Board: *board, Tasks: tasks})
}

// Delete godoc
// @Summary      Delete a board with its tasks and cards
// @Description  Scoped to the owner: deleting someone else's board matches nothing and still succeeds.
// @Tags         Boards
// @Produce      json
// @Param        id   path      string  true  "Board ID"
// @Success      200  {object}  SuccessResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/boards/{id} [delete]
func (h *BoardHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !model.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board ID"})
		return
	}

	removed, err := h.boardRepo.Delete(c.Request.Context(), id, middleware.Username(c))
	if err != nil {
		middleware.Logger(c).WithError(err).WithField("board_id", id).Error("delete board")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}
	middleware.Logger(c).WithField("board_id", id).Debugf("boards removed: %d", removed)
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func createBoard(c *gin.Context, boards repository.BoardRepositoryInterface, title string) (*model.Board, []model.Task, error) {
	board := &model.Board{Title: model.BoardTitle(title), AuthorUsername: middleware.Username(c)}
	seed := model.SeedTasks("", board.AuthorUsername)
	if err := boards.Create(c.Request.Context(), board, seed); err != nil {
		return nil, nil, err
	}
	return board, seed, nil
}
