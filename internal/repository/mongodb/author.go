package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"planboard/internal/model"
	"planboard/internal/repository"
)

// authorDocument keeps the external subject id under "id", next to the store's "_id".
type authorDocument struct {
	ObjectID   primitive.ObjectID `bson:"_id,omitempty"`
	ProviderID string             `bson:"id"`
	Name       string             `bson:"name"`
	Username   string             `bson:"username"`
	Email      string             `bson:"email"`
	Provider   string             `bson:"provider"`
	Image      string             `bson:"image,omitempty"`
	Bio        string             `bson:"bio,omitempty"`
	Role       string             `bson:"role,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d authorDocument) model() *model.Author {
	return &model.Author{
		ID:         d.ObjectID.Hex(),
		ProviderID: d.ProviderID,
		Name:       d.Name,
		Username:   d.Username,
		Email:      d.Email,
		Provider:   d.Provider,
		Image:      d.Image,
		Bio:        d.Bio,
		Role:       d.Role,
		CreatedAt:  d.CreatedAt,
	}
}

type AuthorRepository struct {
	authors *mongo.Collection
}

var _ repository.AuthorRepositoryInterface = (*AuthorRepository)(nil)

func NewAuthorRepository(db *mongo.Database) *AuthorRepository {
	return &AuthorRepository{authors: db.Collection(authorsCollection)}
}

func (r *AuthorRepository) Create(ctx context.Context, author *model.Author) error {
	doc := authorDocument{
		ObjectID:   primitive.NewObjectID(),
		ProviderID: author.ProviderID,
		Name:       author.Name,
		Username:   author.Username,
		Email:      author.Email,
		Provider:   author.Provider,
		Image:      author.Image,
		Bio:        author.Bio,
		Role:       author.Role,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.authors.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateAuthor
		}
		return err
	}
	*author = *doc.model()
	return nil
}

// FindByProviderID matches the external subject id first, then the store id.
func (r *AuthorRepository) FindByProviderID(ctx context.Context, providerID string) (*model.Author, error) {
	if providerID == "" {
		return nil, nil
	}
	author, err := r.findOne(ctx, bson.M{"id": providerID})
	if author != nil || err != nil {
		return author, err
	}
	if oid, err := objectID(providerID); err == nil {
		return r.findOne(ctx, bson.M{"_id": oid})
	}
	return nil, nil
}

func (r *AuthorRepository) FindByEmail(ctx context.Context, email string) (*model.Author, error) {
	if email == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AuthorRepository) FindByUsername(ctx context.Context, username string) (*model.Author, error) {
	if username == "" {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AuthorRepository) findOne(ctx context.Context, filter bson.M) (*model.Author, error) {
	var doc authorDocument
	err := r.authors.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}
