package taskcache

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notification is a transient, user-visible message.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

// RollbackError is returned when the server rejected an optimistic change
// and the cache was restored. The user has already been notified.
type RollbackError struct {
	Op  string
	ID  models.TaskID
	Err error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%s task %s rolled back: %v", e.Op, e.ID, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

const (
	MsgNetwork      = "Unable to connect to the server. Please check your network connection and try again."
	MsgSessionGone  = "Session expired, please log in"
	MsgToggleFailed = "Failed to update task status. Please try again."
	MsgDeleteFailed = "Failed to delete task. Please try again."
)

// FailureMessage picks the message shown for err, falling back to generic.
func FailureMessage(err error, generic string) string {
	switch {
	case errors.Is(err, common.ErrAuthRequired):
		return MsgSessionGone
	case errors.Is(err, common.ErrNetwork):
		return MsgNetwork
	}
	return generic
}
