package handler_test

import (
	"context"

	"planboard/internal/model"

	"github.com/stretchr/testify/mock"
)

// Мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, id, owner string, patch model.TaskPatch) error {
	args := m.Called(ctx, id, owner, patch)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id, owner string) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByBoard(ctx context.Context, boardID, owner string) ([]model.Task, error) {
	args := m.Called(ctx, boardID, owner)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks := args.Get(0)
	if tasks == nil {
		return nil, args.Error(1)
	}
	return tasks.([]model.Task), args.Error(1)
}

// Мок репозитория досок
type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) Create(ctx context.Context, board *model.Board, seed []model.Task) error {
	args := m.Called(ctx, board, seed)
	return args.Error(0)
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id string) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardRepository) ListByOwner(ctx context.Context, owner string) ([]model.Board, error) {
	args := m.Called(ctx, owner)
	boards := args.Get(0)
	if boards == nil {
		return nil, args.Error(1)
	}
	return boards.([]model.Board), args.Error(1)
}

func (m *MockBoardRepository) Delete(ctx context.Context, id, owner string) (int64, error) {
	args := m.Called(ctx, id, owner)
	return args.Get(0).(int64), args.Error(1)
}

type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Create(ctx context.Context, card *model.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) ListByBoard(ctx context.Context, boardID, owner string) ([]model.Card, error) {
	args := m.Called(ctx, boardID, owner)
	cards := args.Get(0)
	if cards == nil {
		return nil, args.Error(1)
	}
	return cards.([]model.Card), args.Error(1)
}

func (m *MockCardRepository) NextPosition(ctx context.Context, boardID, owner string) (int, error) {
	args := m.Called(ctx, boardID, owner)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) Update(ctx context.Context, id, owner string, patch model.CardPatch) error {
	args := m.Called(ctx, id, owner, patch)
	return args.Error(0)
}

func (m *MockCardRepository) Delete(ctx context.Context, id, owner string) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}
