package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/taskcache"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// TaskService implements the task page flows on top of the API client and
// the local task cache.
//
// Create and Update wait for the server before touching the cache; Toggle and
// Delete are optimistic (see taskcache).
type TaskService interface {
	Refresh(ctx context.Context, opts models.ListOptions) (models.TaskListResponse, error)
	LoadAll(ctx context.Context, completed *bool) ([]models.Task, error)
	Tasks() []models.Task
	Get(ctx context.Context, id models.TaskID) (models.Task, error)
	Create(ctx context.Context, task models.TaskCreate) (models.Task, error)
	Update(ctx context.Context, id models.TaskID, update models.TaskUpdate) (models.Task, error)
	Edit(ctx context.Context, id models.TaskID, edit models.TaskEdit) (models.Task, error)
	Toggle(ctx context.Context, id models.TaskID) (models.Task, error)
	Delete(ctx context.Context, id models.TaskID) error
	Search(query string, priority models.Priority) []models.Task
}

type taskService struct {
	client   client.Client
	user     taskcache.UserSource
	cache    *taskcache.Cache
	pageSize int
	logger   logging.Logger
}

// NewTaskService builds a TaskService. A non-positive pageSize means
// models.DefaultPageSize.
func NewTaskService(c client.Client, user taskcache.UserSource, cache *taskcache.Cache, pageSize int, logger logging.Logger) TaskService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &taskService{client: c, user: user, cache: cache, pageSize: pageSize, logger: logger}
}

// Refresh loads one page and makes it the cache content.
func (s *taskService) Refresh(ctx context.Context, opts models.ListOptions) (models.TaskListResponse, error) {
	userID, err := s.user.UserID()
	if err != nil {
		return models.TaskListResponse{}, err
	}
	if opts.Limit <= 0 {
		opts.Limit = s.pageSize
	}

	page, err := s.client.ListTasks(ctx, userID, opts)
	if err != nil {
		return models.TaskListResponse{}, err
	}

	s.cache.Replace(page.Tasks)
	return page, nil
}

// LoadAll pages through every task matching completed and caches them.
func (s *taskService) LoadAll(ctx context.Context, completed *bool) ([]models.Task, error) {
	userID, err := s.user.UserID()
	if err != nil {
		return nil, err
	}

	var all []models.Task
	opts := models.ListOptions{Limit: s.pageSize, Completed: completed}
	for {
		page, err := s.client.ListTasks(ctx, userID, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Tasks...)

		if len(page.Tasks) == 0 || len(all) >= page.Total {
			break
		}
		opts.Offset += len(page.Tasks)
	}

	s.logger.Debug(ctx, "tasks loaded", "count", len(all))
	s.cache.Replace(all)
	return s.cache.Tasks(), nil
}

func (s *taskService) Tasks() []models.Task {
	return s.cache.Tasks()
}

// Get fetches the task from the server and refreshes the cached copy.
func (s *taskService) Get(ctx context.Context, id models.TaskID) (models.Task, error) {
	userID, err := s.user.UserID()
	if err != nil {
		return models.Task{}, err
	}

	task, err := s.client.GetTask(ctx, userID, id)
	if err != nil {
		return models.Task{}, err
	}

	s.cache.Upsert(task)
	return task, nil
}

func (s *taskService) Create(ctx context.Context, task models.TaskCreate) (models.Task, error) {
	task = task.Normalize()
	if err := task.Validate(); err != nil {
		return models.Task{}, err
	}

	userID, err := s.user.UserID()
	if err != nil {
		return models.Task{}, err
	}

	created, err := s.client.CreateTask(ctx, userID, task)
	if err != nil {
		return models.Task{}, err
	}

	s.cache.Append(created)
	s.logger.Info(ctx, "task created", "task_id", created.ID.String())
	return created, nil
}

func (s *taskService) Update(ctx context.Context, id models.TaskID, update models.TaskUpdate) (models.Task, error) {
	update = update.Normalize()
	if update.IsEmpty() {
		return models.Task{}, &models.ValidationError{Field: "update", Message: "Nothing to update"}
	}
	if err := update.Validate(); err != nil {
		return models.Task{}, err
	}

	userID, err := s.user.UserID()
	if err != nil {
		return models.Task{}, err
	}

	updated, err := s.client.UpdateTask(ctx, userID, id, update)
	if err != nil {
		return models.Task{}, err
	}

	s.cache.Upsert(updated)
	return updated, nil
}

// Edit sends only the fields of edit that differ from the cached task. An
// edit that changes nothing returns the cached task without a request.
func (s *taskService) Edit(ctx context.Context, id models.TaskID, edit models.TaskEdit) (models.Task, error) {
	orig, ok := s.cache.Get(id)
	if !ok {
		var err error
		if orig, err = s.Get(ctx, id); err != nil {
			return models.Task{}, err
		}
	}

	update := models.Diff(orig, edit)
	if update.IsEmpty() {
		return orig, nil
	}
	return s.Update(ctx, id, update)
}

func (s *taskService) Toggle(ctx context.Context, id models.TaskID) (models.Task, error) {
	if err := s.ensureCached(ctx, id); err != nil {
		return models.Task{}, err
	}

	t, err := s.cache.Toggle(ctx, id)
	if err != nil {
		return t, fmt.Errorf("toggle task %s: %w", id, err)
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, id models.TaskID) error {
	if err := s.ensureCached(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// ensureCached fetches a task the cache has not seen yet, so that optimistic
// mutations have something to roll back to.
func (s *taskService) ensureCached(ctx context.Context, id models.TaskID) error {
	if _, ok := s.cache.Get(id); ok {
		return nil
	}
	_, err := s.Get(ctx, id)
	return err
}

// Search filters the cached tasks by a case-insensitive substring of the
// title or description, and by priority when one is given.
func (s *taskService) Search(query string, priority models.Priority) []models.Task {
	query = strings.ToLower(strings.TrimSpace(query))

	var out []models.Task
	for _, t := range s.cache.Tasks() {
		if priority != "" && t.Priority.OrDefault() != priority {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}
	return out
}
