package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"planboard/internal/handler"
	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const cardID = "65a1f0c2e4b0a1b2c3d4e5f8"

func setupCardRouter() (*gin.Engine, *MockCardRepository, *MockBoardRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cardRepo := new(MockCardRepository)
	boardRepo := new(MockBoardRepository)
	cardHandler := handler.NewCardHandler(cardRepo, boardRepo)

	api := r.Group("/api", asUser("alice"))
	api.POST("/boards/:id/cards", cardHandler.Create)
	api.GET("/boards/:id/cards", cardHandler.GetByBoard)
	api.PATCH("/cards/:id", cardHandler.Update)
	api.DELETE("/cards/:id", cardHandler.Delete)
	return r, cardRepo, boardRepo
}

func TestCardCreate_AppendsAtNextPosition(t *testing.T) {
	// Arrange
	router, cardRepo, boardRepo := setupCardRouter()
	boardRepo.On("GetByID", mock.Anything, boardID).Return(&model.Board{ID: boardID, AuthorUsername: "alice"}, nil)
	cardRepo.On("NextPosition", mock.Anything, boardID, "alice").Return(3, nil)
	cardRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Card) bool {
		return c.Position == 3 && c.Status == model.StatusTodo && c.BoardID == boardID
	})).Return(nil)

	// Act
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, jsonRequest("POST", "/api/boards/"+boardID+"/cards", map[string]string{"title": "Retro"}))

	// Assert
	assert.Equal(t, http.StatusCreated, resp.Code)
	cardRepo.AssertExpectations(t)
}

func TestCardCreate_RequiresTitle(t *testing.T) {
	router, cardRepo, _ := setupCardRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, jsonRequest("POST", "/api/boards/"+boardID+"/cards", map[string]string{"content": "x"}))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	cardRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCardUpdate_NotFound(t *testing.T) {
	router, cardRepo, _ := setupCardRouter()
	cardRepo.On("Update", mock.Anything, cardID, "alice", mock.Anything).Return(repository.ErrCardNotFound)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, jsonRequest("PATCH", "/api/cards/"+cardID, map[string]int{"position": 2}))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCardDelete(t *testing.T) {
	router, cardRepo, _ := setupCardRouter()
	cardRepo.On("Delete", mock.Anything, cardID, "alice").Return(nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, jsonRequest("DELETE", "/api/cards/"+cardID, nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"success":true}`, resp.Body.String())
}
