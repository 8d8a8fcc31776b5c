package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/analytics"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

const maxTitleWidth = 48

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func statusLabel(t models.Task, now time.Time) string {
	switch {
	case t.Completed:
		return "done"
	case t.IsOverdue(now):
		return "overdue"
	}
	return "open"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printTasks(w io.Writer, tasks []models.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, t := range tasks {
		var due string
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID, statusLabel(t, now), t.Priority.OrDefault(), due, truncate(t.Title, maxTitleWidth))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d task(s)\n", len(tasks))
}

func printTask(w io.Writer, t models.Task, now time.Time) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", statusLabel(t, now))
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority.OrDefault())
	if t.DueDate != nil && !t.DueDate.IsZero() {
		fmt.Fprintf(tw, "Due:\t%s\n", t.DueDate)
	}
	if !t.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Local().Format(time.DateTime))
	}
	if !t.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Updated:\t%s\n", t.UpdatedAt.Local().Format(time.DateTime))
	}
	tw.Flush()
}

func printStats(w io.Writer, s analytics.Stats, now time.Time) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Completed:\t%d (%d%%)\n", s.Completed, s.CompletionPercent)
	fmt.Fprintf(tw, "Pending:\t%d\n", s.Pending)
	fmt.Fprintf(tw, "In progress:\t%d\n", s.InProgress)
	fmt.Fprintf(tw, "Overdue:\t%d\n", s.Overdue)
	fmt.Fprintf(tw, "This week:\t%d created, %d completed (%d%%)\n", s.WeekCreated, s.WeekCompleted, s.WeeklyRate)
	fmt.Fprintf(tw, "Streak:\t%d day(s)\n", s.Streak)
	tw.Flush()

	fmt.Fprintln(w, "By priority:")
	tw = newTable(w)
	for _, pc := range s.ByPriority {
		fmt.Fprintf(tw, "  %s\t%d/%d done\n", pc.Priority, pc.Completed, pc.Total)
	}
	tw.Flush()

	if len(s.Recent) > 0 {
		fmt.Fprintln(w, "Recent:")
		for _, t := range s.Recent {
			fmt.Fprintf(w, "  %s\n", t)
		}
	}
}

func printSettings(w io.Writer, cfg *config.Config) {
	tw := newTable(w)
	fmt.Fprintf(tw, "API URL:\t%s\n", cfg.ServerBaseURL)
	fmt.Fprintf(tw, "Database:\t%s\n", cfg.DatabasePath)
	fmt.Fprintf(tw, "Timeout:\t%s\n", cfg.RequestTimeout)
	fmt.Fprintf(tw, "Page size:\t%d\n", cfg.PageSize)
	fmt.Fprintf(tw, "Log:\t%s (%s)\n", cfg.LogLevel, cfg.LogFormat)
	if cfg.File != "" {
		fmt.Fprintf(tw, "Config file:\t%s\n", cfg.File)
	}
	tw.Flush()
}
