package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planboard/internal/model"
	"planboard/internal/repository"
)

type cardDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	BoardID        string             `bson:"boardId"`
	AuthorUsername string             `bson:"authorUsername"`
	Title          string             `bson:"title"`
	Content        string             `bson:"content"`
	Position       int                `bson:"position"`
	Status         model.Status       `bson:"status"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d cardDocument) model() model.Card {
	return model.Card{
		ID:             d.ID.Hex(),
		BoardID:        d.BoardID,
		AuthorUsername: d.AuthorUsername,
		Title:          d.Title,
		Content:        d.Content,
		Position:       d.Position,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
	}
}

type CardRepository struct {
	cards *mongo.Collection
}

var _ repository.CardRepositoryInterface = (*CardRepository)(nil)

func NewCardRepository(db *mongo.Database) *CardRepository {
	return &CardRepository{cards: db.Collection(cardsCollection)}
}

func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	doc := cardDocument{
		ID:             primitive.NewObjectID(),
		BoardID:        card.BoardID,
		AuthorUsername: card.AuthorUsername,
		Title:          card.Title,
		Content:        card.Content,
		Position:       card.Position,
		Status:         card.Status,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := r.cards.InsertOne(ctx, doc); err != nil {
		return err
	}
	*card = doc.model()
	return nil
}

func (r *CardRepository) ListByBoard(ctx context.Context, boardID, owner string) ([]model.Card, error) {
	cursor, err := r.cards.Find(ctx,
		bson.M{"boardId": model.CanonicalID(boardID), "authorUsername": owner},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []cardDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	cards := make([]model.Card, 0, len(docs))
	for _, d := range docs {
		cards = append(cards, d.model())
	}
	return cards, nil
}

func (r *CardRepository) NextPosition(ctx context.Context, boardID, owner string) (int, error) {
	var last cardDocument
	err := r.cards.FindOne(ctx,
		bson.M{"boardId": model.CanonicalID(boardID), "authorUsername": owner},
		options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Position + 1, nil
}

func (r *CardRepository) Update(ctx context.Context, id, owner string, patch model.CardPatch) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Position != nil {
		set["position"] = *patch.Position
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	result, err := r.cards.UpdateOne(ctx, bson.M{"_id": oid, "authorUsername": owner}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) Delete(ctx context.Context, id, owner string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.cards.DeleteOne(ctx, bson.M{"_id": oid, "authorUsername": owner})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrCardNotFound
	}
	return nil
}
