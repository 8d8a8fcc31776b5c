package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

var _ Client = (*HTTPClient)(nil)

func tasksPath(userID string) string {
	return "/api/" + url.PathEscape(userID) + "/"
}

func taskPath(userID string, id models.TaskID) string {
	return tasksPath(userID) + url.PathEscape(id.String())
}

// Login exchanges credentials for a token pair. It never goes through the
// refresh flow; a 401 here means the credentials are wrong.
func (c *HTTPClient) Login(ctx context.Context, req models.LoginRequest) (models.TokenPair, error) {
	r := apiRequest{method: http.MethodPost, path: "/auth/login", body: req}
	payload, err := encodeBody(r.body)
	if err != nil {
		return models.TokenPair{}, err
	}

	resp, _, err := c.send(ctx, r, payload, false)
	if err != nil {
		return models.TokenPair{}, err
	}

	var pair models.TokenPair
	if err := c.decode(resp, &pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if pair.AccessToken == "" {
		return models.TokenPair{}, fmt.Errorf("%w: empty access token", ErrLoginFailed)
	}
	return pair, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context, userID string, opts models.ListOptions) (models.TaskListResponse, error) {
	if userID == "" {
		return models.TaskListResponse{}, common.ErrNotAuthenticated
	}

	var out models.TaskListResponse
	err := c.do(ctx, apiRequest{method: http.MethodGet, path: tasksPath(userID), query: opts.RawQuery()}, &out)
	if err != nil {
		return models.TaskListResponse{}, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, userID string, id models.TaskID) (models.Task, error) {
	if userID == "" {
		return models.Task{}, common.ErrNotAuthenticated
	}

	var out models.Task
	if err := c.do(ctx, apiRequest{method: http.MethodGet, path: taskPath(userID, id)}, &out); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return models.Task{}, fmt.Errorf("get task %s: %w: %w", id, common.ErrNotFound, err)
		}
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return out, nil
}

// CreateTask validates task locally and posts it. Nothing is sent when
// validation fails.
func (c *HTTPClient) CreateTask(ctx context.Context, userID string, task models.TaskCreate) (models.Task, error) {
	if userID == "" {
		return models.Task{}, common.ErrNotAuthenticated
	}

	task = task.Normalize()
	if err := task.Validate(); err != nil {
		return models.Task{}, err
	}

	var out models.Task
	if err := c.do(ctx, apiRequest{method: http.MethodPost, path: tasksPath(userID), body: task}, &out); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return out, nil
}

// UpdateTask validates update locally and sends only the fields it sets.
func (c *HTTPClient) UpdateTask(ctx context.Context, userID string, id models.TaskID, update models.TaskUpdate) (models.Task, error) {
	if userID == "" {
		return models.Task{}, common.ErrNotAuthenticated
	}

	update = update.Normalize()
	if err := update.Validate(); err != nil {
		return models.Task{}, err
	}

	var out models.Task
	if err := c.do(ctx, apiRequest{method: http.MethodPut, path: taskPath(userID, id), body: update}, &out); err != nil {
		return models.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	return out, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, userID string, id models.TaskID) error {
	if userID == "" {
		return common.ErrNotAuthenticated
	}

	if err := c.do(ctx, apiRequest{method: http.MethodDelete, path: taskPath(userID, id)}, nil); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) ToggleTask(ctx context.Context, userID string, id models.TaskID, completed bool) (models.Task, error) {
	if userID == "" {
		return models.Task{}, common.ErrNotAuthenticated
	}

	req := apiRequest{
		method: http.MethodPatch,
		path:   taskPath(userID, id) + "/complete",
		body:   models.TaskToggle{Completed: completed},
	}

	var out models.Task
	if err := c.do(ctx, req, &out); err != nil {
		return models.Task{}, fmt.Errorf("toggle task %s: %w", id, err)
	}
	return out, nil
}
