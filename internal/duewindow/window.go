// Package duewindow selects tasks whose due date falls inside an
// inclusive date window anchored at "now", for the notification center
// and the assistant's upcoming-tasks tool.
package duewindow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/store"
)

// Params describes one due-window query.
type Params struct {
	// Now is the reference instant the window is anchored at.
	Now time.Time

	// HorizonDays is the forward horizon in whole days. Zero means
	// "today only".
	HorizonDays int

	// Statuses are the task statuses considered active. Defaults to
	// model.ActiveStatuses when empty.
	Statuses []string

	// Cap limits the number of results. Zero or negative means
	// unbounded.
	Cap int
}

// Window computes the inclusive date range [start-of-day(now),
// end-of-day(now+horizonDays)]. Both boundaries are included: a task
// due exactly at either end falls inside the window.
func Window(now time.Time, horizonDays int) (start, end time.Time) {
	year, month, day := now.Date()
	start = time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, horizonDays+1).Add(-time.Nanosecond)
	return start, end
}

// Select returns the active tasks due inside the window described by p,
// ordered by due date ascending (ties broken by id) and truncated to
// p.Cap.
func Select(ctx context.Context, s store.Store, p Params) ([]model.Task, error) {
	statuses := p.Statuses
	if len(statuses) == 0 {
		statuses = model.ActiveStatuses
	}

	start, end := Window(p.Now, p.HorizonDays)

	tasks, err := s.GetTasks(ctx, store.TaskFilter{
		Statuses: statuses,
		DueFrom:  &start,
		DueTo:    &end,
		SortBy:   "due_date",
	})
	if err != nil {
		return nil, fmt.Errorf("selecting due tasks: %w", err)
	}

	// The due date is mandatory in the data model, but a record with a
	// missing one must not break selection.
	filtered := tasks[:0]
	for _, t := range tasks {
		if t.DueDate.IsZero() {
			continue
		}
		filtered = append(filtered, t)
	}

	return Cap(Rank(filtered), p.Cap), nil
}

// Rank orders tasks by due date ascending, breaking ties by task id so
// the result is deterministic. The input slice is sorted in place and
// returned.
func Rank(tasks []model.Task) []model.Task {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// Cap returns the first n tasks in order, or all of them when fewer
// exist. A non-positive n means unbounded. Cap never reorders.
func Cap(tasks []model.Task, n int) []model.Task {
	if n <= 0 || len(tasks) <= n {
		return tasks
	}
	return tasks[:n]
}
