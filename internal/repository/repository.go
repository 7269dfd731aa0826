package repository

import (
	"context"

	"planboard/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskRepositoryInterface is the task contract consumed by the HTTP layer.
// Update and Delete match on both id and owner, so a foreign task is reported as ErrTaskNotFound.
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, id, owner string, patch model.TaskPatch) error
	Delete(ctx context.Context, id, owner string) error
	ListByBoard(ctx context.Context, boardID, owner string) ([]model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
}

// BoardRepositoryInterface covers the board aggregate: a board, its tasks and its cards.
type BoardRepositoryInterface interface {
	// Create stores the board, then the seed tasks pointed at the new board id.
	Create(ctx context.Context, board *model.Board, seed []model.Task) error
	GetByID(ctx context.Context, id string) (*model.Board, error)
	// ListByOwner returns the owner's boards, newest first.
	ListByOwner(ctx context.Context, owner string) ([]model.Board, error)
	// Delete removes the owner's board and every task and card referencing it.
	// It reports how many boards were removed; a foreign board matches nothing.
	Delete(ctx context.Context, id, owner string) (int64, error)
}

type CardRepositoryInterface interface {
	Create(ctx context.Context, card *model.Card) error
	ListByBoard(ctx context.Context, boardID, owner string) ([]model.Card, error)
	NextPosition(ctx context.Context, boardID, owner string) (int, error)
	Update(ctx context.Context, id, owner string, patch model.CardPatch) error
	Delete(ctx context.Context, id, owner string) error
}

// AuthorRepositoryInterface finders return nil, nil when nothing matches.
type AuthorRepositoryInterface interface {
	Create(ctx context.Context, author *model.Author) error
	FindByProviderID(ctx context.Context, providerID string) (*model.Author, error)
	FindByEmail(ctx context.Context, email string) (*model.Author, error)
	FindByUsername(ctx context.Context, username string) (*model.Author, error)
}

// NewID returns a fresh identifier in the document store's format.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
