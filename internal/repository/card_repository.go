package repository

import (
	"context"

	"planboard/internal/model"

	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

var _ CardRepositoryInterface = (*CardRepository)(nil)

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	if card.ID == "" {
		card.ID = NewID()
	}
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *CardRepository) ListByBoard(ctx context.Context, boardID, owner string) ([]model.Card, error) {
	cards := []model.Card{}
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND author_username = ?", model.CanonicalID(boardID), owner).
		Order("position").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// NextPosition returns the position after the last card of the board.
func (r *CardRepository) NextPosition(ctx context.Context, boardID, owner string) (int, error) {
	var next struct {
		Next int
	}
	err := r.db.WithContext(ctx).Model(&model.Card{}).
		Select("COALESCE(MAX(position) + 1, 0) as next").
		Where("board_id = ? AND author_username = ?", model.CanonicalID(boardID), owner).
		Scan(&next).Error

	return next.Next, err
}

func (r *CardRepository) Update(ctx context.Context, id, owner string, patch model.CardPatch) error {
	if !model.IsValidID(id) {
		return model.ErrInvalidID
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Content != nil {
		fields["content"] = *patch.Content
	}
	if patch.Position != nil {
		fields["position"] = *patch.Position
	}
	if patch.Status != nil {
		fields["status"] = string(*patch.Status)
	}

	result := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ? AND author_username = ?", model.CanonicalID(id), owner).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) Delete(ctx context.Context, id, owner string) error {
	if !model.IsValidID(id) {
		return model.ErrInvalidID
	}
	result := r.db.WithContext(ctx).Delete(&model.Card{}, "id = ? AND author_username = ?", model.CanonicalID(id), owner)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}
