package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/amestudio/agencydesk/internal/duewindow"
	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/store"
)

const (
	// upcomingHorizonDays covers today plus two more days.
	upcomingHorizonDays = 2

	// upcomingCap bounds the tool result size.
	upcomingCap = 5

	// dueDateLayout renders due dates as dd/MM/yyyy.
	dueDateLayout = "02/01/2006"
)

// UpcomingTask is the task projection returned by the upcoming-tasks
// tool.
type UpcomingTask struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"clientName,omitempty"`
	DueDate    string `json:"dueDate"`
}

// UpcomingTasksResult is the tool's success-shaped return value. On
// failure Tasks is empty and Summary describes the error; the tool
// never raises, because the tool-invocation loop cannot handle errors
// mid-generation.
type UpcomingTasksResult struct {
	Tasks   []UpcomingTask `json:"tasks"`
	Summary string         `json:"summary"`
}

// UpcomingTasks selects the at most five active tasks due between today
// and two days from now, earliest first, and summarizes the count.
func UpcomingTasks(ctx context.Context, s store.Store, now time.Time) UpcomingTasksResult {
	tasks, err := duewindow.Select(ctx, s, duewindow.Params{
		Now:         now,
		HorizonDays: upcomingHorizonDays,
		Statuses:    model.ActiveStatuses,
		Cap:         upcomingCap,
	})
	if err != nil {
		return UpcomingTasksResult{
			Tasks:   []UpcomingTask{},
			Summary: fmt.Sprintf("No se pudieron consultar las tareas próximas: %v", err),
		}
	}

	if len(tasks) == 0 {
		return UpcomingTasksResult{
			Tasks:   []UpcomingTask{},
			Summary: "No hay tareas próximas en los próximos días.",
		}
	}

	out := make([]UpcomingTask, 0, len(tasks))
	for _, t := range tasks {
		ut := UpcomingTask{
			ID:      t.ID,
			Name:    t.Name,
			DueDate: t.DueDate.Format(dueDateLayout),
		}
		if t.ClientName != nil {
			ut.ClientName = *t.ClientName
		}
		out = append(out, ut)
	}

	return UpcomingTasksResult{
		Tasks:   out,
		Summary: fmt.Sprintf("%d tarea(s) próxima(s) encontrada(s).", len(out)),
	}
}
