// Package client talks to the planboard HTTP API with a session token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"planboard/internal/boardsync"
	"planboard/internal/identity"
	"planboard/internal/model"
)

// ErrTransport wraps failures to reach the server at all.
var ErrTransport = errors.New("server unreachable")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.StatusCode)
	}
	return fmt.Sprintf("server answered %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL  string
	username string
	http     *http.Client
}

var _ boardsync.TaskStore = (*Client)(nil)

// New returns a client sending token as a bearer credential. username fills
// authorUsername on created tasks and must match the token's session.
func New(baseURL, token, username string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	// no timeout: a confirmation ends only when the server answers or the connection fails
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		http:     oauth2.NewClient(context.Background(), src),
	}
}

// SessionResponse mirrors the /auth/session and /auth/refresh answers.
type SessionResponse struct {
	User  identity.Session `json:"user"`
	Token string           `json:"token"`
}

// BoardWithTasks is a board together with its tasks.
type BoardWithTasks struct {
	model.Board
	Tasks []model.Task `json:"tasks"`
}

func (c *Client) Session(ctx context.Context) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodGet, "/auth/session", nil, &out)
	return out, err
}

// Refresh asks the server to rebuild the session token from the stored author.
func (c *Client) Refresh(ctx context.Context) (SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &out)
	return out, err
}

func (c *Client) ListBoards(ctx context.Context) ([]model.Board, error) {
	var boards []model.Board
	err := c.do(ctx, http.MethodGet, "/api/boards", nil, &boards)
	return boards, err
}

func (c *Client) CreateBoard(ctx context.Context, title string) (BoardWithTasks, error) {
	var out BoardWithTasks
	err := c.do(ctx, http.MethodPost, "/api/boards", map[string]string{"title": title}, &out)
	return out, err
}

func (c *Client) GetBoard(ctx context.Context, id string) (BoardWithTasks, error) {
	if !model.IsValidID(id) {
		return BoardWithTasks{}, model.ErrInvalidID
	}
	var out BoardWithTasks
	err := c.do(ctx, http.MethodGet, "/api/boards/"+id, nil, &out)
	return out, err
}

func (c *Client) DeleteBoard(ctx context.Context, id string) error {
	if !model.IsValidID(id) {
		return model.ErrInvalidID
	}
	return c.do(ctx, http.MethodDelete, "/api/boards/"+id, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context, boardID string) ([]model.Task, error) {
	if !model.IsValidID(boardID) {
		return nil, model.ErrInvalidID
	}
	var tasks []model.Task
	err := c.do(ctx, http.MethodGet, "/api/boards/"+boardID+"/tasks", nil, &tasks)
	return tasks, err
}

// CreateTask stores task on its board. The owner is always the client's user.
func (c *Client) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	body := map[string]string{
		"title":          task.Title,
		"description":    task.Description,
		"status":         string(task.Status),
		"boardId":        task.BoardID,
		"authorUsername": c.username,
	}
	var created model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", body, &created)
	return created, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error {
	if !model.IsValidID(id) {
		return model.ErrInvalidID
	}
	return c.do(ctx, http.MethodPatch, "/api/tasks/"+id, patch, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if !model.IsValidID(id) {
		return model.ErrInvalidID
	}
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var problem struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&problem)
		return &APIError{StatusCode: resp.StatusCode, Message: problem.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
