package models

import "strings"

// TaskCreate is the body of a create request. Optional fields are pointers
// so that only what the user actually supplied is sent.
type TaskCreate struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	DueDate     *Date     `json:"due_date,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// Normalize trims the text fields and drops an empty description.
func (c TaskCreate) Normalize() TaskCreate {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = trimOptional(c.Description)
	return c
}

// Validate checks the create payload without touching the network.
func (c TaskCreate) Validate() error {
	var errs FieldErrors
	errs.add(ValidateTitle(c.Title))
	if c.Description != nil {
		errs.add(ValidateDescription(*c.Description))
	}
	if c.Priority != nil {
		errs.add(validatePriority(*c.Priority))
	}
	return errs.err()
}

// TaskUpdate is the body of a partial update. Nil fields are left unchanged
// on the server and are never serialized.
type TaskUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	DueDate     *Date     `json:"due_date,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil &&
		u.Priority == nil && u.Completed == nil
}

// Normalize trims the text fields that are set.
func (u TaskUpdate) Normalize() TaskUpdate {
	if u.Title != nil {
		t := strings.TrimSpace(*u.Title)
		u.Title = &t
	}
	if u.Description != nil {
		d := strings.TrimSpace(*u.Description)
		u.Description = &d
	}
	return u
}

// Validate checks only the fields that are set.
func (u TaskUpdate) Validate() error {
	var errs FieldErrors
	if u.Title != nil {
		errs.add(ValidateTitle(*u.Title))
	}
	if u.Description != nil {
		errs.add(ValidateDescription(*u.Description))
	}
	if u.Priority != nil {
		errs.add(validatePriority(*u.Priority))
	}
	return errs.err()
}

// Apply returns a copy of t with the update's fields applied.
func (u TaskUpdate) Apply(t Task) Task {
	t = t.Clone()
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.DueDate != nil {
		d := *u.DueDate
		t.DueDate = &d
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	return t
}

// TaskEdit is what an edit form collects: the full desired state of the
// editable fields.
type TaskEdit struct {
	Title       string
	Description string
	DueDate     *Date
	Priority    Priority
}

// Diff builds an update holding only the fields of e that differ from orig.
func Diff(orig Task, e TaskEdit) TaskUpdate {
	var u TaskUpdate
	if title := strings.TrimSpace(e.Title); title != orig.Title {
		u.Title = &title
	}
	if desc := strings.TrimSpace(e.Description); desc != orig.Description {
		u.Description = &desc
	}
	if !sameDate(orig.DueDate, e.DueDate) && e.DueDate != nil {
		d := *e.DueDate
		u.DueDate = &d
	}
	if p := e.Priority.OrDefault(); p != orig.Priority.OrDefault() {
		u.Priority = &p
	}
	return u
}

// TaskToggle is the body of the completion endpoint.
type TaskToggle struct {
	Completed bool `json:"completed"`
}

func sameDate(a, b *Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
