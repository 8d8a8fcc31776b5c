// Package taskcache keeps the client's ordered copy of the user's tasks and
// applies toggle and delete optimistically, rolling back what the server
// rejects.
package taskcache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// errUnexpectedTask is the cause of a rollback when the server confirms a
// toggle with a copy of some other task, or with no task at all.
var errUnexpectedTask = errors.New("unexpected task in response")

// Mutator sends the optimistic mutations to the backend.
type Mutator interface {
	ToggleTask(ctx context.Context, userID string, id models.TaskID, completed bool) (models.Task, error)
	DeleteTask(ctx context.Context, userID string, id models.TaskID) error
}

// UserSource yields the id of the signed-in user.
type UserSource interface {
	UserID() (string, error)
}

type Cache struct {
	api      Mutator
	user     UserSource
	notifier Notifier
	logger   logging.Logger

	mu    sync.RWMutex
	tasks []models.Task

	locksMu sync.Mutex
	locks   map[models.TaskID]*taskLock
}

type taskLock struct {
	mu   sync.Mutex
	refs int
}

type Option func(*Cache)

func WithNotifier(n Notifier) Option {
	return func(c *Cache) { c.notifier = n }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func New(api Mutator, user UserSource, opts ...Option) *Cache {
	c := &Cache{
		api:      api,
		user:     user,
		notifier: nopNotifier{},
		logger:   logging.Nop(),
		locks:    map[models.TaskID]*taskLock{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Replace swaps the whole list, keeping the given order.
func (c *Cache) Replace(tasks []models.Task) {
	cp := make([]models.Task, len(tasks))
	for i, t := range tasks {
		cp[i] = t.Clone()
	}
	c.mu.Lock()
	c.tasks = cp
	c.mu.Unlock()
}

// Tasks returns a copy of the cached list.
func (c *Cache) Tasks() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Task, len(c.tasks))
	for i, t := range c.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (c *Cache) Get(id models.TaskID) (models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return c.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// Append adds server-confirmed tasks at the end.
func (c *Cache) Append(tasks ...models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tasks {
		c.tasks = append(c.tasks, t.Clone())
	}
}

// Upsert replaces the task with the same id in place, or appends it.
func (c *Cache) Upsert(t models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(t.ID); i >= 0 {
		c.tasks[i] = t.Clone()
		return
	}
	c.tasks = append(c.tasks, t.Clone())
}

// Toggle flips the completion flag locally, then asks the server. On failure
// the task is restored and a notification is emitted.
func (c *Cache) Toggle(ctx context.Context, id models.TaskID) (models.Task, error) {
	userID, err := c.user.UserID()
	if err != nil {
		return models.Task{}, err
	}

	unlock := c.lockTask(id)
	defer unlock()

	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return models.Task{}, fmt.Errorf("task %s: %w", id, common.ErrNotFound)
	}
	orig := c.tasks[i].Clone()
	c.tasks[i].Completed = !orig.Completed
	c.mu.Unlock()

	updated, err := c.api.ToggleTask(ctx, userID, id, !orig.Completed)
	if err != nil {
		c.restore(orig)
		return orig, c.fail(ctx, "toggle", id, err, MsgToggleFailed)
	}

	if updated.ID != id {
		c.restore(orig)
		return orig, c.fail(ctx, "toggle", id, fmt.Errorf("server returned task %q: %w", updated.ID, errUnexpectedTask), MsgToggleFailed)
	}
	c.mu.Lock()
	if i := c.index(id); i >= 0 {
		c.tasks[i] = updated.Clone()
	}
	c.mu.Unlock()

	msg := "Task marked as pending"
	if updated.Completed {
		msg = "Task marked as completed"
	}
	c.notifier.Notify(Notification{Level: LevelInfo, Message: msg})
	return updated, nil
}

// Delete removes the task locally, then asks the server. On failure the task
// is put back where it was.
func (c *Cache) Delete(ctx context.Context, id models.TaskID) error {
	userID, err := c.user.UserID()
	if err != nil {
		return err
	}

	unlock := c.lockTask(id)
	defer unlock()

	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("task %s: %w", id, common.ErrNotFound)
	}
	orig := c.tasks[i].Clone()
	var next models.TaskID
	if i+1 < len(c.tasks) {
		next = c.tasks[i+1].ID
	}
	c.tasks = slices.Delete(c.tasks, i, i+1)
	c.mu.Unlock()

	if err := c.api.DeleteTask(ctx, userID, id); err != nil {
		c.reinsert(orig, i, next)
		return c.fail(ctx, "delete", id, err, MsgDeleteFailed)
	}

	c.notifier.Notify(Notification{Level: LevelInfo, Message: "Task deleted successfully"})
	return nil
}

// restore puts back the pre-mutation copy of one task. Other tasks are left
// alone so that confirmed changes to them survive.
func (c *Cache) restore(orig models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(orig.ID); i >= 0 {
		c.tasks[i] = orig
	}
}

// reinsert puts t back before the task that followed it, or at its old
// index when that task is gone too.
func (c *Cache) reinsert(t models.Task, at int, next models.TaskID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index(t.ID) >= 0 {
		return
	}
	if next != "" {
		if j := c.index(next); j >= 0 {
			at = j
		}
	}
	at = min(at, len(c.tasks))
	c.tasks = slices.Insert(c.tasks, at, t)
}

func (c *Cache) fail(ctx context.Context, op string, id models.TaskID, err error, generic string) error {
	c.logger.Warn(ctx, "optimistic update rolled back", "op", op, "task_id", id.String(), "error", err)
	c.notifier.Notify(Notification{
		Level:   LevelError,
		Message: FailureMessage(err, generic),
		Err:     err,
	})
	return &RollbackError{Op: op, ID: id, Err: err}
}

// index must be called with c.mu held.
func (c *Cache) index(id models.TaskID) int {
	return slices.IndexFunc(c.tasks, func(t models.Task) bool { return t.ID == id })
}

// lockTask serializes mutations of one task id.
func (c *Cache) lockTask(id models.TaskID) func() {
	c.locksMu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &taskLock{}
		c.locks[id] = l
	}
	l.refs++
	c.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		c.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.locksMu.Unlock()
	}
}
