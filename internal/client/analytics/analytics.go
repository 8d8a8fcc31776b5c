// Package analytics derives the dashboard figures from a list of tasks.
package analytics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// RecentLimit is how many tasks Stats.Recent holds at most.
const RecentLimit = 4

type PriorityCount struct {
	Priority  models.Priority
	Total     int
	Completed int
}

type Stats struct {
	Total      int
	Completed  int
	Pending    int
	Overdue    int
	InProgress int

	// CompletionPercent is Completed/Total, rounded.
	CompletionPercent int

	// Tasks created in the current Sunday..Saturday week.
	WeekCreated   int
	WeekCompleted int
	WeeklyRate    int

	ByPriority []PriorityCount

	// Streak counts consecutive days with at least one completion, ending
	// today, or yesterday when nothing has been completed yet today.
	Streak int

	// Recent lists the most recently touched tasks, newest first.
	Recent []models.Task
}

// Compute builds Stats for tasks as seen at now. Days are taken in now's
// location.
func Compute(tasks []models.Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}

	byPriority := make(map[models.Priority]*PriorityCount, len(models.Priorities))
	for _, p := range models.Priorities {
		s.ByPriority = append(s.ByPriority, PriorityCount{Priority: p})
	}
	for i := range s.ByPriority {
		byPriority[s.ByPriority[i].Priority] = &s.ByPriority[i]
	}

	weekStart := WeekStart(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	completionDays := map[string]bool{}

	for _, t := range tasks {
		pc := byPriority[t.Priority.OrDefault()]
		if pc != nil {
			pc.Total++
		}

		if t.Completed {
			s.Completed++
			if pc != nil {
				pc.Completed++
			}
			if !t.UpdatedAt.IsZero() {
				completionDays[dayKey(t.UpdatedAt.In(now.Location()))] = true
			}
		} else if t.IsOverdue(now) {
			s.Overdue++
		}

		created := t.CreatedAt.In(now.Location())
		if !t.CreatedAt.IsZero() && !created.Before(weekStart) && created.Before(weekEnd) {
			s.WeekCreated++
			if t.Completed {
				s.WeekCompleted++
			}
		}
	}

	s.Pending = s.Total - s.Completed
	s.InProgress = s.Pending - s.Overdue
	s.CompletionPercent = percent(s.Completed, s.Total)
	s.WeeklyRate = percent(s.WeekCompleted, s.WeekCreated)
	s.Streak = streak(completionDays, now)
	s.Recent = recent(tasks, RecentLimit)
	return s
}

// WeekStart returns midnight of the Sunday that starts now's week.
func WeekStart(now time.Time) time.Time {
	day := models.StartOfDay(now)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func streak(days map[string]bool, now time.Time) int {
	day := models.StartOfDay(now)
	if !days[dayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}

	n := 0
	for days[dayKey(day)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func recent(tasks []models.Task, limit int) []models.Task {
	out := make([]models.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}

	slices.SortStableFunc(out, func(a, b models.Task) int {
		return cmp.Compare(touched(b).UnixNano(), touched(a).UnixNano())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func touched(t models.Task) time.Time {
	if t.UpdatedAt.After(t.CreatedAt.Time) {
		return t.UpdatedAt.Time
	}
	return t.CreatedAt.Time
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

func dayKey(t time.Time) string {
	return t.Format(models.DateLayout)
}
