package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/analytics"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// parseStatus maps a list filter word to the completed query value.
func parseStatus(s string) (*bool, error) {
	switch strings.ToLower(s) {
	case "", "all":
		return nil, nil
	case "open", "pending", "todo":
		v := false
		return &v, nil
	case "done", "completed":
		v := true
		return &v, nil
	}
	return nil, usageErrorf("list [all|open|done]")
}

func taskIDArg(args []string, usage string) (models.TaskID, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", usageErrorf("%s", usage)
	}
	return models.TaskID(strings.TrimPrefix(args[0], "#")), nil
}

// List fetches every task matching the optional status filter and prints them.
func (a *App) List(ctx context.Context, args []string) error {
	var status string
	if len(args) > 0 {
		status = args[0]
	}
	completed, err := parseStatus(status)
	if err != nil {
		return err
	}
	tasks, err := a.tasks.LoadAll(ctx, completed)
	if err != nil {
		return err
	}
	printTasks(a.out, tasks, a.now())
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := taskIDArg(args, "show <id>")
	if err != nil {
		return err
	}
	t, err := a.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	printTask(a.out, t, a.now())
	return nil
}

// Add creates a task. With arguments they form the title and nothing else is
// asked; otherwise every field is prompted for.
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return a.createTask(ctx, models.TaskCreate{Title: strings.Join(args, " ")})
	}

	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	desc, err := GetSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	due, err := GetSimpleText(a.reader, "Due date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	prio, err := GetSimpleText(a.reader, "Priority low/medium/high (optional)", a.out)
	if err != nil {
		return err
	}

	create, err := buildCreate(title, desc, due, prio)
	if err != nil {
		return err
	}
	return a.createTask(ctx, create)
}

// buildCreate turns raw form input into a create payload. Empty optional
// fields are left unset.
func buildCreate(title, desc, due, prio string) (models.TaskCreate, error) {
	c := models.TaskCreate{Title: title}
	if desc != "" {
		c.Description = &desc
	}
	if due != "" {
		d, err := models.ParseDate(due)
		if err != nil {
			return c, &models.ValidationError{Field: "due_date", Message: err.Error()}
		}
		c.DueDate = &d
	}
	if prio != "" {
		p, err := models.ParsePriority(prio)
		if err != nil {
			return c, &models.ValidationError{Field: "priority", Message: err.Error()}
		}
		c.Priority = &p
	}
	return c, nil
}

func (a *App) createTask(ctx context.Context, c models.TaskCreate) error {
	t, err := a.tasks.Create(ctx, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created task %s: %s\n", t.ID, t.Title)
	return nil
}

// Edit prompts for each editable field, keeping the current value on empty
// input. A single "-" clears the description.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := taskIDArg(args, "edit <id>")
	if err != nil {
		return err
	}
	t, err := a.tasks.Get(ctx, id)
	if err != nil {
		return err
	}

	edit := models.TaskEdit{Title: t.Title, Description: t.Description, DueDate: t.DueDate, Priority: t.Priority}

	if edit.Title, err = a.prompt("Title", t.Title); err != nil {
		return err
	}
	desc, err := a.prompt("Description ('-' to clear)", t.Description)
	if err != nil {
		return err
	}
	if desc == "-" {
		desc = ""
	}
	edit.Description = desc

	var curDue string
	if t.DueDate != nil {
		curDue = t.DueDate.String()
	}
	due, err := a.prompt("Due date YYYY-MM-DD", curDue)
	if err != nil {
		return err
	}
	if due != curDue {
		d, err := models.ParseDate(due)
		if err != nil {
			return &models.ValidationError{Field: "due_date", Message: err.Error()}
		}
		edit.DueDate = &d
	}

	prio, err := a.prompt("Priority", string(t.Priority.OrDefault()))
	if err != nil {
		return err
	}
	if edit.Priority, err = models.ParsePriority(prio); err != nil {
		return &models.ValidationError{Field: "priority", Message: err.Error()}
	}

	if models.Diff(t, edit).IsEmpty() {
		fmt.Fprintln(a.out, "Nothing changed")
		return nil
	}
	if _, err := a.tasks.Edit(ctx, id, edit); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Task updated")
	return nil
}

// Done flips the completion state. The outcome is reported by the cache.
func (a *App) Done(ctx context.Context, args []string) error {
	id, err := taskIDArg(args, "done <id>")
	if err != nil {
		return err
	}
	_, err = a.tasks.Toggle(ctx, id)
	return err
}

// Delete asks for confirmation before removing the task.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := taskIDArg(args, "delete <id>")
	if err != nil {
		return err
	}
	t, err := a.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete %q? [y/N]", t.Title), a.out)
	if err != nil {
		return err
	}
	if !isYes(answer) {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	return a.deleteTask(ctx, id)
}

func (a *App) deleteTask(ctx context.Context, id models.TaskID) error {
	return a.tasks.Delete(ctx, id)
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

// Search reloads every task and filters them locally. A "priority:<p>" word
// restricts the priority.
func (a *App) Search(ctx context.Context, args []string) error {
	var (
		words    []string
		priority models.Priority
	)
	for _, w := range args {
		if v, ok := strings.CutPrefix(strings.ToLower(w), "priority:"); ok {
			p, err := models.ParsePriority(v)
			if err != nil {
				return &models.ValidationError{Field: "priority", Message: err.Error()}
			}
			priority = p
			continue
		}
		words = append(words, w)
	}

	if _, err := a.tasks.LoadAll(ctx, nil); err != nil {
		return err
	}
	printTasks(a.out, a.tasks.Search(strings.Join(words, " "), priority), a.now())
	return nil
}

// Stats loads every task and prints the dashboard figures.
func (a *App) Stats(ctx context.Context) error {
	tasks, err := a.tasks.LoadAll(ctx, nil)
	if err != nil {
		return err
	}
	printStats(a.out, analytics.Compute(tasks, a.now()), a.now())
	return nil
}

func (a *App) Settings(ctx context.Context) error {
	printSettings(a.out, a.config)
	return nil
}
