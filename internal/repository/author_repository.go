package repository

import (
	"context"
	"errors"

	"planboard/internal/model"

	"gorm.io/gorm"
)

type AuthorRepository struct {
	db *gorm.DB
}

var _ AuthorRepositoryInterface = (*AuthorRepository)(nil)

func NewAuthorRepository(db *gorm.DB) *AuthorRepository {
	return &AuthorRepository{db: db}
}

// Create inserts the author. The connection must be opened with TranslateError so
// unique violations surface as gorm.ErrDuplicatedKey.
func (r *AuthorRepository) Create(ctx context.Context, author *model.Author) error {
	if author.ID == "" {
		author.ID = NewID()
	}
	err := r.db.WithContext(ctx).Create(author).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateAuthor
	}
	return err
}

// FindByProviderID matches the external subject id first, then the store id.
func (r *AuthorRepository) FindByProviderID(ctx context.Context, providerID string) (*model.Author, error) {
	author, err := r.findOne(ctx, "provider_id = ?", providerID)
	if author != nil || err != nil || !model.IsValidID(providerID) {
		return author, err
	}
	return r.findOne(ctx, "id = ?", providerID)
}

func (r *AuthorRepository) FindByEmail(ctx context.Context, email string) (*model.Author, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *AuthorRepository) FindByUsername(ctx context.Context, username string) (*model.Author, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *AuthorRepository) findOne(ctx context.Context, query string, arg string) (*model.Author, error) {
	if arg == "" {
		return nil, nil
	}
	var author model.Author
	err := r.db.WithContext(ctx).Where(query, arg).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}
