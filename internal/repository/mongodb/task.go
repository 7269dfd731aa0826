package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planboard/internal/model"
	"planboard/internal/repository"
)

type taskDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description"`
	Status         model.Status       `bson:"status"`
	BoardID        string             `bson:"boardId"`
	AuthorUsername string             `bson:"authorUsername"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func newTaskDocument(t *model.Task) taskDocument {
	return taskDocument{
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		BoardID:        model.CanonicalID(t.BoardID),
		AuthorUsername: t.AuthorUsername,
		CreatedAt:      time.Now().UTC(),
	}
}

func (d taskDocument) model() model.Task {
	status := d.Status
	if status == "" {
		status = model.StatusTodo
	}
	return model.Task{
		ID:             d.ID.Hex(),
		Title:          d.Title,
		Description:    d.Description,
		Status:         status,
		BoardID:        d.BoardID,
		AuthorUsername: d.AuthorUsername,
		CreatedAt:      d.CreatedAt,
	}
}

type TaskRepository struct {
	tasks *mongo.Collection
}

var _ repository.TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{tasks: db.Collection(tasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	doc := newTaskDocument(task)
	doc.ID = primitive.NewObjectID()
	if _, err := r.tasks.InsertOne(ctx, doc); err != nil {
		return err
	}
	task.ID = doc.ID.Hex()
	task.CreatedAt = doc.CreatedAt
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, id, owner string, patch model.TaskPatch) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	set := bson.M(patch.Fields("title", "description", "status"))
	result, err := r.tasks.UpdateOne(ctx,
		bson.M{"_id": oid, "authorUsername": owner},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, owner string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.tasks.DeleteOne(ctx, bson.M{"_id": oid, "authorUsername": owner})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}

// ListByBoard returns tasks in insertion order; ObjectIDs grow with creation time.
func (r *TaskRepository) ListByBoard(ctx context.Context, boardID, owner string) ([]model.Task, error) {
	return r.find(ctx, bson.M{"boardId": model.CanonicalID(boardID), "authorUsername": owner})
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	return r.find(ctx, bson.M{})
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M) ([]model.Task, error) {
	cursor, err := r.tasks.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.model())
	}
	return tasks, nil
}
