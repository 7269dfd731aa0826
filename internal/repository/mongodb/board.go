package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planboard/internal/model"
	"planboard/internal/repository"
)

type boardDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Title          string             `bson:"title"`
	AuthorUsername string             `bson:"authorUsername"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d boardDocument) model() model.Board {
	created := d.CreatedAt
	if created.IsZero() {
		created = d.ID.Timestamp()
	}
	return model.Board{
		ID:             d.ID.Hex(),
		Title:          model.BoardTitle(d.Title),
		AuthorUsername: d.AuthorUsername,
		CreatedAt:      created,
	}
}

type BoardRepository struct {
	boards *mongo.Collection
	tasks  *mongo.Collection
	cards  *mongo.Collection
}

var _ repository.BoardRepositoryInterface = (*BoardRepository)(nil)

func NewBoardRepository(db *mongo.Database) *BoardRepository {
	return &BoardRepository{
		boards: db.Collection(boardsCollection),
		tasks:  db.Collection(tasksCollection),
		cards:  db.Collection(cardsCollection),
	}
}

// Create inserts the board and then its seed tasks. A failure after the first
// insert leaves the board without tasks.
func (r *BoardRepository) Create(ctx context.Context, board *model.Board, seed []model.Task) error {
	doc := boardDocument{
		ID:             primitive.NewObjectID(),
		Title:          model.BoardTitle(board.Title),
		AuthorUsername: board.AuthorUsername,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := r.boards.InsertOne(ctx, doc); err != nil {
		return err
	}
	*board = doc.model()

	if len(seed) == 0 {
		return nil
	}
	docs := make([]interface{}, len(seed))
	for i := range seed {
		seed[i].BoardID = board.ID
		seed[i].AuthorUsername = board.AuthorUsername
		td := newTaskDocument(&seed[i])
		td.ID = primitive.NewObjectID()
		seed[i].ID = td.ID.Hex()
		seed[i].CreatedAt = td.CreatedAt
		docs[i] = td
	}
	if _, err := r.tasks.InsertMany(ctx, docs); err != nil {
		log.WithField("board_id", board.ID).WithError(err).Warn("board stored without seed tasks")
		return fmt.Errorf("seed tasks: %w", err)
	}
	return nil
}

func (r *BoardRepository) GetByID(ctx context.Context, id string) (*model.Board, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, repository.ErrBoardNotFound
	}
	var doc boardDocument
	if err := r.boards.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrBoardNotFound
		}
		return nil, err
	}
	board := doc.model()
	return &board, nil
}

func (r *BoardRepository) ListByOwner(ctx context.Context, owner string) ([]model.Board, error) {
	cursor, err := r.boards.Find(ctx,
		bson.M{"authorUsername": owner},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []boardDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	boards := make([]model.Board, 0, len(docs))
	for _, d := range docs {
		boards = append(boards, d.model())
	}
	return boards, nil
}

// Delete removes the board first, then its tasks and cards. A failure between
// the writes can leave orphaned dependents.
func (r *BoardRepository) Delete(ctx context.Context, id, owner string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}

	result, err := r.boards.DeleteOne(ctx, bson.M{"_id": oid, "authorUsername": owner})
	if err != nil {
		return 0, err
	}

	dependents := bson.M{"boardId": oid.Hex(), "authorUsername": owner}
	if _, err := r.tasks.DeleteMany(ctx, dependents); err != nil {
		return result.DeletedCount, fmt.Errorf("delete board tasks: %w", err)
	}
	if _, err := r.cards.DeleteMany(ctx, dependents); err != nil {
		return result.DeletedCount, fmt.Errorf("delete board cards: %w", err)
	}
	return result.DeletedCount, nil
}
