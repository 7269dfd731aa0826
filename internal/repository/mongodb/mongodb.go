// Package mongodb implements the repository interfaces on a MongoDB database
// with the collections authors, boards, tasks and cards.
//
// Multi-collection operations (board create with seed tasks, board delete with
// its tasks and cards) are issued as consecutive writes without a transaction.
package mongodb

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planboard/internal/model"
)

const (
	authorsCollection = "authors"
	boardsCollection  = "boards"
	tasksCollection   = "tasks"
	cardsCollection   = "cards"
)

// Connect opens a pooled client and verifies the deployment answers.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(database), nil
}

// EnsureIndexes creates the unique author indexes and the lookup indexes used by the repositories.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		authorsCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "id", Value: 1}}},
		},
		boardsCollection: {
			{Keys: bson.D{{Key: "authorUsername", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "boardId", Value: 1}, {Key: "authorUsername", Value: 1}}},
		},
		cardsCollection: {
			{Keys: bson.D{{Key: "boardId", Value: 1}, {Key: "authorUsername", Value: 1}, {Key: "position", Value: 1}}},
		},
	}

	for name, models := range indexes {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
		log.WithField("collection", name).Debugf("indexes ready: %v", created)
	}
	return nil
}

// objectID parses a hex identifier, reporting malformed input as model.ErrInvalidID.
func objectID(id string) (primitive.ObjectID, error) {
	if !model.IsValidID(id) {
		return primitive.NilObjectID, model.ErrInvalidID
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, model.ErrInvalidID
	}
	return oid, nil
}
