package model_test

import (
	"testing"

	"planboard/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestIsValidID(t *testing.T) {
	cases := map[string]bool{
		"65a1f0c2e4b0a1b2c3d4e5f6":                  true,
		"65A1F0C2E4B0A1B2C3D4E5F6":                  true,
		"65a1f0c2e4b0a1b2c3d4e5f":                   false,
		"65a1f0c2e4b0a1b2c3d4e5f60":                 false,
		"65a1f0c2e4b0a1b2c3d4e5fz":                  false,
		"temp-8f14e45f-ceea-467e-a2b4-6a7f8c9d0e1f": false,
		"": false,
	}

	for id, want := range cases {
		assert.Equal(t, want, model.IsValidID(id), id)
	}
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, model.StatusTodo.Valid())
	assert.True(t, model.StatusInProgress.Valid())
	assert.True(t, model.StatusDone.Valid())
	assert.False(t, model.Status("blocked").Valid())
	assert.False(t, model.Status("").Valid())
}

func TestStatus_NextPrev(t *testing.T) {
	assert.Equal(t, model.StatusInProgress, model.StatusTodo.Next())
	assert.Equal(t, model.StatusDone, model.StatusInProgress.Next())
	assert.Equal(t, model.StatusDone, model.StatusDone.Next())
	assert.Equal(t, model.StatusTodo, model.StatusTodo.Prev())
	assert.Equal(t, model.StatusInProgress, model.StatusDone.Prev())
}

func TestSeedTasks_OnePerColumnInOrder(t *testing.T) {
	tasks := model.SeedTasks("65a1f0c2e4b0a1b2c3d4e5f6", "alice")

	assert.Len(t, tasks, 3)
	for i, status := range model.Statuses {
		assert.Equal(t, status, tasks[i].Status)
		assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", tasks[i].BoardID)
		assert.Equal(t, "alice", tasks[i].AuthorUsername)
		assert.Empty(t, tasks[i].ID)
	}
}

func TestNewTask(t *testing.T) {
	task := model.NewTask("b1", "alice")

	assert.Equal(t, "Nowe zadanie", task.Title)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, "b1", task.BoardID)
	assert.Equal(t, "alice", task.AuthorUsername)
	assert.NoError(t, task.Validate())
}

func TestTask_Validate(t *testing.T) {
	task := model.Task{Title: "x", Status: "todo", BoardID: "b", AuthorUsername: "a"}
	assert.NoError(t, task.Validate())

	task.Title = "  "
	assert.ErrorIs(t, task.Validate(), model.ErrMissingFields)

	task.Title = "x"
	task.Status = "later"
	assert.ErrorIs(t, task.Validate(), model.ErrInvalidStatus)
}

func TestTaskPatch_ValidateAndApply(t *testing.T) {
	assert.ErrorIs(t, model.TaskPatch{}.Validate(), model.ErrEmptyPatch)

	empty := ""
	assert.ErrorIs(t, model.TaskPatch{Title: &empty}.Validate(), model.ErrEmptyTitle)

	bad := model.Status("archived")
	assert.ErrorIs(t, model.TaskPatch{Status: &bad}.Validate(), model.ErrInvalidStatus)

	task := model.Task{Title: "old", Description: "keep", Status: model.StatusTodo}
	patch := model.StatusPatch(model.StatusDone)
	assert.NoError(t, patch.Validate())
	patch.Apply(&task)
	assert.Equal(t, model.StatusDone, task.Status)
	assert.Equal(t, "old", task.Title)
	assert.Equal(t, "keep", task.Description)

	model.ContentPatch("new", "").Apply(&task)
	assert.Equal(t, "new", task.Title)
	assert.Equal(t, "", task.Description)
}

func TestTaskPatch_Fields(t *testing.T) {
	fields := model.StatusPatch(model.StatusDone).Fields("title", "description", "status")

	assert.Equal(t, map[string]interface{}{"status": "done"}, fields)
}

func TestBoardTitle(t *testing.T) {
	assert.Equal(t, "Untitled Board", model.BoardTitle(""))
	assert.Equal(t, "Untitled Board", model.BoardTitle("   "))
	assert.Equal(t, "Sprint", model.BoardTitle(" Sprint "))
}
