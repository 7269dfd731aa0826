package mongodb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"planboard/internal/model"
	"planboard/internal/repository"
	"planboard/internal/repository/mongodb"
)

const (
	boardID = "65a1f0c2e4b0a1b2c3d4e5f6"
	taskID  = "65a1f0c2e4b0a1b2c3d4e5f7"
	cardID  = "65a1f0c2e4b0a1b2c3d4e5f8"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func ack(n int32) bson.D {
	return bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: n}, {Key: "nModified", Value: n}}
}

func TestTaskRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("create assigns id", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewTaskRepository(mt.DB)
		task := model.NewTask(boardID, "alice")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		// Act
		err := repo.Create(context.Background(), &task)

		// Assert
		require.NoError(mt, err)
		assert.True(mt, model.IsValidID(task.ID))
		assert.False(mt, task.CreatedAt.IsZero())
	})

	mt.Run("update reports missing task", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewTaskRepository(mt.DB)
		mt.AddMockResponses(ack(0))

		// Act
		err := repo.Update(context.Background(), taskID, "mallory", model.StatusPatch(model.StatusDone))

		// Assert
		assert.ErrorIs(mt, err, repository.ErrTaskNotFound)
	})

	mt.Run("update applies patch", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewTaskRepository(mt.DB)
		mt.AddMockResponses(ack(1))

		// Act
		err := repo.Update(context.Background(), taskID, "alice", model.ContentPatch("t", "d"))

		// Assert
		assert.NoError(mt, err)
	})

	mt.Run("malformed id never reaches the store", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewTaskRepository(mt.DB)

		// Act
		updateErr := repo.Update(context.Background(), "temp-1", "alice", model.StatusPatch(model.StatusDone))
		deleteErr := repo.Delete(context.Background(), "xyz", "alice")

		// Assert
		assert.ErrorIs(mt, updateErr, model.ErrInvalidID)
		assert.ErrorIs(mt, deleteErr, model.ErrInvalidID)
	})

	mt.Run("delete", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewTaskRepository(mt.DB)
		mt.AddMockResponses(ack(1), ack(0))

		// Act
		first := repo.Delete(context.Background(), taskID, "alice")
		second := repo.Delete(context.Background(), taskID, "alice")

		// Assert
		assert.NoError(mt, first)
		assert.ErrorIs(mt, second, repository.ErrTaskNotFound)
	})

	mt.Run("list by board", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewTaskRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "planboard.tasks", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: oid},
				{Key: "title", Value: "Nowe zadanie"},
				{Key: "status", Value: "in-progress"},
				{Key: "boardId", Value: boardID},
				{Key: "authorUsername", Value: "alice"},
			},
		))

		// Act
		tasks, err := repo.ListByBoard(context.Background(), boardID, "alice")

		// Assert
		require.NoError(mt, err)
		require.Len(mt, tasks, 1)
		assert.Equal(mt, oid.Hex(), tasks[0].ID)
		assert.Equal(mt, model.StatusInProgress, tasks[0].Status)
		assert.Equal(mt, "alice", tasks[0].AuthorUsername)
	})
}

func TestBoardRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("create seeds three tasks", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewBoardRepository(mt.DB)
		board := model.Board{AuthorUsername: "alice"}
		seed := model.SeedTasks("", "")
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		// Act
		err := repo.Create(context.Background(), &board, seed)

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, model.DefaultBoardTitle, board.Title)
		for i, want := range model.Statuses {
			assert.Equal(mt, want, seed[i].Status)
			assert.Equal(mt, board.ID, seed[i].BoardID)
			assert.Equal(mt, "alice", seed[i].AuthorUsername)
			assert.True(mt, model.IsValidID(seed[i].ID))
		}
	})

	mt.Run("seed failure leaves the board behind", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewBoardRepository(mt.DB)
		board := model.Board{Title: "Sprint", AuthorUsername: "alice"}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Message: "shutting down"}),
		)

		// Act
		err := repo.Create(context.Background(), &board, model.SeedTasks("", ""))

		// Assert
		assert.Error(mt, err)
		assert.True(mt, model.IsValidID(board.ID))
	})

	mt.Run("get by id", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewBoardRepository(mt.DB)
		oid, _ := primitive.ObjectIDFromHex(boardID)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "planboard.boards", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "title", Value: ""},
				{Key: "authorUsername", Value: "alice"},
				{Key: "createdAt", Value: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			}),
			mtest.CreateCursorResponse(0, "planboard.boards", mtest.FirstBatch),
		)

		// Act
		board, err := repo.GetByID(context.Background(), boardID)
		_, missingErr := repo.GetByID(context.Background(), boardID)

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, model.DefaultBoardTitle, board.Title)
		assert.Equal(mt, "alice", board.AuthorUsername)
		assert.ErrorIs(mt, missingErr, repository.ErrBoardNotFound)
	})

	mt.Run("delete cascades", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewBoardRepository(mt.DB)
		mt.AddMockResponses(ack(1), ack(3), ack(0))

		// Act
		removed, err := repo.Delete(context.Background(), boardID, "alice")

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), removed)
	})

	mt.Run("delete by non-owner matches nothing", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewBoardRepository(mt.DB)
		mt.AddMockResponses(ack(0), ack(0), ack(0))

		// Act
		removed, err := repo.Delete(context.Background(), boardID, "mallory")

		// Assert
		require.NoError(mt, err)
		assert.Zero(mt, removed)
	})
}

func TestCardRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("next position on empty board", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewCardRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "planboard.cards", mtest.FirstBatch))

		// Act
		pos, err := repo.NextPosition(context.Background(), boardID, "alice")

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, 0, pos)
	})

	mt.Run("next position follows the last card", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewCardRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "planboard.cards", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "position", Value: 4}},
		))

		// Act
		pos, err := repo.NextPosition(context.Background(), boardID, "alice")

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, 5, pos)
	})

	mt.Run("update missing card", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewCardRepository(mt.DB)
		title := "Retro"
		mt.AddMockResponses(ack(0))

		// Act
		err := repo.Update(context.Background(), cardID, "alice", model.CardPatch{Title: &title})

		// Assert
		assert.ErrorIs(mt, err, repository.ErrCardNotFound)
	})
}

func TestAuthorRepository(t *testing.T) {
	mt := newMock(t)

	mt.Run("duplicate key maps to ErrDuplicateAuthor", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewAuthorRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: planboard.authors index: email_1",
		}))

		// Act
		err := repo.Create(context.Background(), &model.Author{Username: "alice", Email: "a@example.com"})

		// Assert
		assert.ErrorIs(mt, err, repository.ErrDuplicateAuthor)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewAuthorRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "planboard.authors", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "id", Value: "42"},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "a@example.com"},
			{Key: "provider", Value: "github"},
		}))

		// Act
		author, err := repo.FindByEmail(context.Background(), "a@example.com")

		// Assert
		require.NoError(mt, err)
		require.NotNil(mt, author)
		assert.Equal(mt, "42", author.ProviderID)
		assert.Equal(mt, "github", author.Provider)
	})

	mt.Run("missing author is nil without error", func(mt *mtest.T) {
		// Arrange
		repo := mongodb.NewAuthorRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "planboard.authors", mtest.FirstBatch))

		// Act
		author, err := repo.FindByUsername(context.Background(), "ghost")

		// Assert
		assert.NoError(mt, err)
		assert.Nil(mt, author)
	})
}
