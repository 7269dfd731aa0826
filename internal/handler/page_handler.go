package handler

import (
	"net/http"
	"net/url"

	"planboard/internal/middleware"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the server-rendered board pages and their form posts.
type PageHandler struct {
	boardRepo repository.BoardRepositoryInterface
	taskRepo  repository.TaskRepositoryInterface
}

func NewPageHandler(boardRepo repository.BoardRepositoryInterface, taskRepo repository.TaskRepositoryInterface) *PageHandler {
	return &PageHandler{boardRepo: boardRepo, taskRepo: taskRepo}
}

// Column is one status column of the rendered board.
type Column struct {
	Status model.Status
	Label  string
	Tasks  []model.Task
}

func (h *PageHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title": "Planboard",
		"User":  middleware.Session(c),
	})
}

func (h *PageHandler) Plans(c *gin.Context) {
	boards, err := h.boardRepo.ListByOwner(c.Request.Context(), middleware.Username(c))
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list boards")
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Title":   "Błąd",
			"User":    middleware.Session(c),
			"Message": "Nie udało się wczytać tablic.",
		})
		return
	}
	c.HTML(http.StatusOK, "plans.html", gin.H{
		"Title":  "Moje tablice Kanban",
		"User":   middleware.Session(c),
		"Boards": boards,
	})
}

// CreateBoard creates a board (untitled unless the form names it) and opens it.
func (h *PageHandler) CreateBoard(c *gin.Context) {
	board, _, err := createBoard(c, h.boardRepo, c.PostForm("title"))
	if err != nil {
		middleware.Logger(c).WithError(err).Error("create board")
		c.Redirect(http.StatusSeeOther, "/plan")
		return
	}
	c.Redirect(http.StatusSeeOther, "/plan/"+board.ID)
}

func (h *PageHandler) DeleteBoard(c *gin.Context) {
	id := c.PostForm("boardId")
	if model.IsValidID(id) {
		if _, err := h.boardRepo.Delete(c.Request.Context(), id, middleware.Username(c)); err != nil {
			middleware.Logger(c).WithError(err).WithField("board_id", id).Error("delete board")
		}
	}
	c.Redirect(http.StatusSeeOther, "/plan")
}

// Board renders the three columns. Missing or foreign boards send the user back to /plan.
func (h *PageHandler) Board(c *gin.Context) {
	username := middleware.Username(c)
	board, err := h.boardRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || board.AuthorUsername != username {
		c.Redirect(http.StatusFound, "/plan")
		return
	}

	tasks, err := h.taskRepo.ListByBoard(c.Request.Context(), board.ID, username)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list board tasks")
		c.Redirect(http.StatusFound, "/plan")
		return
	}

	c.HTML(http.StatusOK, "board.html", gin.H{
		"Title":    board.Title,
		"User":     middleware.Session(c),
		"Board":    board,
		"Columns":  Columns(tasks),
		"Error":    c.Query("error"),
		"Statuses": model.Statuses,
	})
}

func (h *PageHandler) CreateTask(c *gin.Context) {
	board, ok := h.formBoard(c)
	if !ok {
		return
	}
	task := model.NewTask(board.ID, board.AuthorUsername)
	if err := h.taskRepo.Create(c.Request.Context(), &task); err != nil {
		middleware.Logger(c).WithError(err).Error("create task")
		redirectBoard(c, board.ID, model.MsgCreateFailed)
		return
	}
	redirectBoard(c, board.ID, "")
}

func (h *PageHandler) MoveTask(c *gin.Context) {
	h.patchTask(c, model.StatusPatch(model.Status(c.PostForm("status"))), model.MsgMoveFailed)
}

func (h *PageHandler) EditTask(c *gin.Context) {
	h.patchTask(c, model.ContentPatch(c.PostForm("title"), c.PostForm("description")), model.MsgEditFailed)
}

func (h *PageHandler) DeleteTask(c *gin.Context) {
	board, ok := h.formBoard(c)
	if !ok {
		return
	}
	if err := h.taskRepo.Delete(c.Request.Context(), c.Param("taskId"), board.AuthorUsername); err != nil {
		middleware.Logger(c).WithError(err).Error("delete task")
		redirectBoard(c, board.ID, model.MsgDeleteFailed)
		return
	}
	redirectBoard(c, board.ID, "")
}

func (h *PageHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", gin.H{
		"Title": "Nie znaleziono",
		"User":  middleware.Session(c),
	})
}

func (h *PageHandler) patchTask(c *gin.Context, patch model.TaskPatch, failure string) {
	board, ok := h.formBoard(c)
	if !ok {
		return
	}
	err := patch.Validate()
	if err == nil {
		err = h.taskRepo.Update(c.Request.Context(), c.Param("taskId"), board.AuthorUsername, patch)
	}
	if err != nil {
		middleware.Logger(c).WithError(err).Warn("update task")
		redirectBoard(c, board.ID, failure)
		return
	}
	redirectBoard(c, board.ID, "")
}

func (h *PageHandler) formBoard(c *gin.Context) (*model.Board, bool) {
	board, err := h.boardRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil || board.AuthorUsername != middleware.Username(c) {
		c.Redirect(http.StatusSeeOther, "/plan")
		return nil, false
	}
	return board, true
}

func redirectBoard(c *gin.Context, boardID, message string) {
	target := "/plan/" + boardID
	if message != "" {
		target += "?error=" + url.QueryEscape(message)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// Columns groups tasks by status, keeping their order within each column.
func Columns(tasks []model.Task) []Column {
	columns := make([]Column, len(model.Statuses))
	index := make(map[model.Status]int, len(model.Statuses))
	for i, s := range model.Statuses {
		columns[i] = Column{Status: s, Label: s.Label(), Tasks: []model.Task{}}
		index[s] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.Status]; ok {
			columns[i].Tasks = append(columns[i].Tasks, t)
		}
	}
	return columns
}
