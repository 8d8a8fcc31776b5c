// Package models defines the data exchanged with the task backend and the
// client-side validation applied before any of it is sent.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority ranks a task. The zero value is treated as PriorityMedium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the known priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority maps user input to a Priority. Empty input yields the default.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// OrDefault returns p, or PriorityMedium when p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityMedium
	}
	return p
}

// TaskID is the server-assigned task identifier. The backend may encode it
// as a JSON number or a string; it is always a string on the client.
type TaskID string

func (id *TaskID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

func (id TaskID) String() string { return string(id) }

// Task is the client's cached copy of a backend task.
type Task struct {
	ID          TaskID    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	DueDate     *Date     `json:"due_date,omitempty"`
	Priority    Priority  `json:"priority,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

// IsOverdue reports whether t is open and its due date is before the day of now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil || t.DueDate.IsZero() {
		return false
	}
	y, m, d := t.DueDate.Date()
	due := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return due.Before(StartOfDay(now))
}

func (t Task) String() string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	s := fmt.Sprintf("[%s] %s  %s (%s)", mark, t.ID, t.Title, t.Priority.OrDefault())
	if t.DueDate != nil && !t.DueDate.IsZero() {
		s += " due " + t.DueDate.String()
	}
	return s
}

// TaskListResponse is one page of tasks.
type TaskListResponse struct {
	Tasks  []Task `json:"tasks"`
	Total  int    `json:"total"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// DefaultPageSize is the page size used when ListOptions.Limit is not set.
const DefaultPageSize = 50

// ListOptions selects a page of tasks. A nil Completed lists all tasks.
type ListOptions struct {
	Limit     int
	Offset    int
	Completed *bool
}

// RawQuery encodes the options as limit, offset and the optional completed
// filter, in that order.
func (o ListOptions) RawQuery() string {
	limit := o.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	offset := o.Offset
	if offset < 0 {
		offset = 0
	}
	q := "limit=" + strconv.Itoa(limit) + "&offset=" + strconv.Itoa(offset)
	if o.Completed != nil {
		q += "&completed=" + strconv.FormatBool(*o.Completed)
	}
	return q
}
