package client

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// Client is the API contract of the task backend.
type Client interface {
	Login(ctx context.Context, req models.LoginRequest) (models.TokenPair, error)
	RefreshTokens(ctx context.Context) error
	ListTasks(ctx context.Context, userID string, opts models.ListOptions) (models.TaskListResponse, error)
	GetTask(ctx context.Context, userID string, id models.TaskID) (models.Task, error)
	CreateTask(ctx context.Context, userID string, task models.TaskCreate) (models.Task, error)
	UpdateTask(ctx context.Context, userID string, id models.TaskID, update models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, userID string, id models.TaskID) error
	ToggleTask(ctx context.Context, userID string, id models.TaskID, completed bool) (models.Task, error)
}

// TokenStore is where HTTPClient reads and rotates the bearer credentials.
type TokenStore interface {
	Access(ctx context.Context) (string, bool, error)
	Refresh(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
}
