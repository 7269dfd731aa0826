package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"planboard/internal/client"
	"planboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	boardID = "65a1f0c2e4b0a1b2c3d4e5f6"
	taskID  = "65a1f0c2e4b0a1b2c3d4e5f7"
)

func TestCreateTask_SendsOwnerAndToken(t *testing.T) {
	// Arrange
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"` + taskID + `","title":"Nowe zadanie","status":"todo","boardId":"` + boardID + `","authorUsername":"alice"}`))
	}))
	defer srv.Close()
	c := client.New(srv.URL+"/", "tok", "alice")

	// Act
	created, err := c.CreateTask(context.Background(), model.NewTask(boardID, "someone-else"))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, taskID, created.ID)
	assert.Equal(t, "alice", got["authorUsername"])
	assert.Equal(t, "todo", got["status"])
	assert.Equal(t, model.NewTaskTitle, got["title"])
}

func TestUpdateTask_RejectsMalformedIDLocally(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()
	c := client.New(srv.URL, "tok", "alice")

	err := c.UpdateTask(context.Background(), "temp-1", model.StatusPatch(model.StatusDone))
	assert.ErrorIs(t, err, model.ErrInvalidID)
	err = c.DeleteTask(context.Background(), "xyz")
	assert.ErrorIs(t, err, model.ErrInvalidID)

	assert.Zero(t, calls.Load())
}

func TestUpdateTask_SendsPatch(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/tasks/"+taskID, r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"status": "done"}, body)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()
	c := client.New(srv.URL, "tok", "alice")

	// Act
	err := c.UpdateTask(context.Background(), taskID, model.StatusPatch(model.StatusDone))

	// Assert
	assert.NoError(t, err)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to delete task"}`))
	}))
	defer srv.Close()
	c := client.New(srv.URL, "tok", "alice")

	err := c.DeleteTask(context.Background(), taskID)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to delete task", apiErr.Message)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := client.New(url, "tok", "alice")

	_, err := c.ListBoards(context.Background())

	assert.ErrorIs(t, err, client.ErrTransport)
}

func TestGetBoardAndRefresh(t *testing.T) {
	// Arrange
	mux := http.NewServeMux()
	mux.HandleFunc("/api/boards/"+boardID, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"` + boardID + `","title":"Sprint","authorUsername":"alice","tasks":[{"id":"` + taskID + `","title":"A","status":"done"}]}`))
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"user":{"role":"guy","username":"alice"},"token":"fresh"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := client.New(srv.URL, "tok", "alice")

	// Act
	board, err := c.GetBoard(context.Background(), boardID)
	require.NoError(t, err)
	session, err := c.Refresh(context.Background())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "Sprint", board.Title)
	require.Len(t, board.Tasks, 1)
	assert.Equal(t, model.StatusDone, board.Tasks[0].Status)
	assert.Equal(t, "fresh", session.Token)
	assert.Equal(t, "guy", session.User.Role)
}
