package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"gorm.io/gorm"
)

// BoardRepository runs each aggregate operation in a single transaction.
type BoardRepository struct {
	db *gorm.DB
}

var _ BoardRepositoryInterface = (*BoardRepository)(nil)

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board, seed []model.Task) error {
	if board.ID == "" {
		board.ID = NewID()
	}
	board.Title = model.BoardTitle(board.Title)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		if len(seed) == 0 {
			return nil
		}
		for i := range seed {
			seed[i].ID = NewID()
			seed[i].BoardID = board.ID
			seed[i].AuthorUsername = board.AuthorUsername
		}
		return tx.Create(&seed).Error
	})
}

func (r *BoardRepository) GetByID(ctx context.Context, id string) (*model.Board, error) {
	if !model.IsValidID(id) {
		return nil, ErrBoardNotFound
	}
	var board model.Board
	if err := r.db.WithContext(ctx).Where("id = ?", model.CanonicalID(id)).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	board.Title = model.BoardTitle(board.Title)
	return &board, nil
}

func (r *BoardRepository) ListByOwner(ctx context.Context, owner string) ([]model.Board, error) {
	boards := []model.Board{}
	err := r.db.WithContext(ctx).Where("author_username = ?", owner).Order("created_at DESC").Find(&boards).Error
	if err != nil {
		return nil, err
	}
	for i := range boards {
		boards[i].Title = model.BoardTitle(boards[i].Title)
	}
	return boards, nil
}

func (r *BoardRepository) Delete(ctx context.Context, id, owner string) (int64, error) {
	if !model.IsValidID(id) {
		return 0, model.ErrInvalidID
	}

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Board{}, "id = ? AND author_username = ?", model.CanonicalID(id), owner)
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		if err := tx.Delete(&model.Task{}, "board_id = ? AND author_username = ?", model.CanonicalID(id), owner).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Card{}, "board_id = ? AND author_username = ?", model.CanonicalID(id), owner).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
