package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_UnmarshalBackendPayload(t *testing.T) {
	body := `{
		"id": 42,
		"title": "Write report",
		"description": null,
		"completed": false,
		"due_date": "2025-03-01",
		"priority": "high",
		"user_id": "u1",
		"created_at": "2025-02-01T10:00:00.123456",
		"updated_at": "2025-02-02T11:30:00Z"
	}`

	var got Task
	require.NoError(t, json.Unmarshal([]byte(body), &got))

	want := Task{
		ID:        "42",
		Title:     "Write report",
		DueDate:   &Date{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		Priority:  PriorityHigh,
		UserID:    "u1",
		CreatedAt: Timestamp{time.Date(2025, 2, 1, 10, 0, 0, 123456000, time.UTC)},
		UpdatedAt: Timestamp{time.Date(2025, 2, 2, 11, 30, 0, 0, time.UTC)},
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestTaskID_AcceptsStringAndNumber(t *testing.T) {
	var id TaskID
	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &id))
	assert.Equal(t, TaskID("abc"), id)

	require.NoError(t, json.Unmarshal([]byte(`17`), &id))
	assert.Equal(t, TaskID("17"), id)

	require.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	p, err = ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	require.Error(t, err)

	assert.Equal(t, PriorityMedium, Priority("").OrDefault())
	assert.Equal(t, PriorityLow, PriorityLow.OrDefault())
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	yesterday := Date{time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)}
	today := Date{time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)}

	assert.True(t, Task{DueDate: &yesterday}.IsOverdue(now))
	assert.False(t, Task{DueDate: &today}.IsOverdue(now), "due today is not overdue")
	assert.False(t, Task{DueDate: &yesterday, Completed: true}.IsOverdue(now))
	assert.False(t, Task{}.IsOverdue(now))
}

func TestTask_CloneCopiesDueDate(t *testing.T) {
	d := Date{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	orig := Task{ID: "1", DueDate: &d}

	c := orig.Clone()
	c.DueDate.Time = c.DueDate.AddDate(0, 0, 1)

	assert.Equal(t, "2025-01-01", orig.DueDate.String())
	assert.Equal(t, "2025-01-02", c.DueDate.String())
}

func TestListOptions_RawQuery(t *testing.T) {
	yes := true
	assert.Equal(t, "limit=50&offset=0", ListOptions{}.RawQuery())
	assert.Equal(t, "limit=10&offset=20&completed=true", ListOptions{Limit: 10, Offset: 20, Completed: &yes}.RawQuery())
	assert.Equal(t, "limit=50&offset=0", ListOptions{Offset: -5}.RawQuery())
}

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2025-12-31")
	require.NoError(t, err)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-12-31"`, string(b))

	d, err = ParseDate("2025-12-31T23:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", d.String())

	_, err = ParseDate("31/12/2025")
	require.Error(t, err)

	var null Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	assert.True(t, null.IsZero())
}
