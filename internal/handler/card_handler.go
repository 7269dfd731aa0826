package handler

import (
	"errors"
	"net/http"

	"planboard/internal/middleware"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type CardHandler struct {
	cardRepo  repository.CardRepositoryInterface
	boardRepo repository.BoardRepositoryInterface
}

func NewCardHandler(cardRepo repository.CardRepositoryInterface, boardRepo repository.BoardRepositoryInterface) *CardHandler {
	return &CardHandler{cardRepo: cardRepo, boardRepo: boardRepo}
}

type CardRequest struct {
	Title    string       `json:"title" binding:"required"`
	Content  string       `json:"content"`
	Status   model.Status `json:"status"`
	Position *int         `json:"position"`
}

// Create godoc
// @Summary      Add a card to a board
// @Tags         Cards
// @Accept       json
// @Produce      json
// @Param        id    path      string       true  "Board ID"
// @Param        card  body      CardRequest  true  "Card"
// @Success      201   {object}  model.Card
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/boards/{id}/cards [post]
func (h *CardHandler) Create(c *gin.Context) {
	username := middleware.Username(c)

	var req CardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board, ok := ownedBoard(c, h.boardRepo, c.Param("id"), username)
	if !ok {
		return
	}

	card := model.Card{
		BoardID:        board.ID,
		AuthorUsername: username,
		Title:          req.Title,
		Content:        req.Content,
		Status:         req.Status,
	}
	if err := card.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	// Без явной позиции карточка попадает в конец доски
	if req.Position != nil {
		card.Position = *req.Position
	} else {
		next, err := h.cardRepo.NextPosition(c.Request.Context(), board.ID, username)
		if err != nil {
			middleware.Logger(c).WithError(err).Error("next card position")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
			return
		}
		card.Position = next
	}

	if err := h.cardRepo.Create(c.Request.Context(), &card); err != nil {
		middleware.Logger(c).WithError(err).Error("create card")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
		return
	}
	c.JSON(http.StatusCreated, card)
}

// GetByBoard godoc
// @Summary      List the cards of a board by position
// @Tags         Cards
// @Produce      json
// @Param        id   path      string  true  "Board ID"
// @Success      200  {array}   model.Card
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/boards/{id}/cards [get]
func (h *CardHandler) GetByBoard(c *gin.Context) {
	username := middleware.Username(c)
	board, ok := ownedBoard(c, h.boardRepo, c.Param("id"), username)
	if !ok {
		return
	}

	cards, err := h.cardRepo.ListByBoard(c.Request.Context(), board.ID, username)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list cards")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cards"})
		return
	}
	c.JSON(http.StatusOK, cards)
}

// Update godoc
// @Summary      Update card fields
// @Tags         Cards
// @Accept       json
// @Produce      json
// @Param        id     path      string           true  "Card ID"
// @Param        patch  body      model.CardPatch  true  "Fields to change"
// @Success      200    {object}  SuccessResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/cards/{id} [patch]
func (h *CardHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !model.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
		return
	}

	var patch model.CardPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if err := patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return
	}

	err := h.cardRepo.Update(c.Request.Context(), id, middleware.Username(c), patch)
	if errors.Is(err, repository.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	if err != nil {
		middleware.Logger(c).WithError(err).Error("update card")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update card"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Delete godoc
// @Summary      Delete a card
// @Tags         Cards
// @Produce      json
// @Param        id   path      string  true  "Card ID"
// @Success      200  {object}  SuccessResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /api/cards/{id} [delete]
func (h *CardHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !model.IsValidID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid card ID"})
		return
	}

	err := h.cardRepo.Delete(c.Request.Context(), id, middleware.Username(c))
	if errors.Is(err, repository.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return
	}
	if err != nil {
		middleware.Logger(c).WithError(err).Error("delete card")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
