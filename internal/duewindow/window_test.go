package duewindow

import (
	"context"
	"testing"
	"time"

	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/tests/testutil"
)

func TestWindow_AnchorsAtStartOfDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 42, 13, 0, time.UTC)

	start, end := Window(now, 1)

	wantStart := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, start)
	}

	wantEnd := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	if !end.Equal(wantEnd) {
		t.Fatalf("expected end %v, got %v", wantEnd, end)
	}
}

func TestWindow_ZeroHorizonIsTodayOnly(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	start, end := Window(now, 0)

	if start.Day() != 28 || end.Day() != 28 {
		t.Fatalf("expected today-only window, got [%v, %v]", start, end)
	}
	if !end.After(now) {
		t.Fatalf("expected end of today to be after now")
	}
}

func TestRank_OrdersByDueDateThenID(t *testing.T) {
	due := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "c", DueDate: due.Add(time.Hour)},
		{ID: "b", DueDate: due},
		{ID: "a", DueDate: due},
	}

	ranked := Rank(tasks)

	if ranked[0].ID != "a" || ranked[1].ID != "b" || ranked[2].ID != "c" {
		t.Fatalf("expected order a, b, c; got %s, %s, %s",
			ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].DueDate.Before(ranked[i-1].DueDate) {
			t.Fatalf("expected non-decreasing due dates")
		}
	}
}

func TestCap_TruncatesToEarliest(t *testing.T) {
	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	var tasks []model.Task
	for i := 0; i < 7; i++ {
		tasks = append(tasks, model.Task{
			ID:      string(rune('a' + i)),
			DueDate: base.Add(time.Duration(i) * time.Hour),
		})
	}

	capped := Cap(Rank(tasks), 5)

	if len(capped) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(capped))
	}
	if capped[4].ID != "e" {
		t.Fatalf("expected the 5 earliest-due tasks, last was %s", capped[4].ID)
	}
}

func TestCap_UnboundedAndShortInputs(t *testing.T) {
	tasks := []model.Task{{ID: "a"}, {ID: "b"}}

	if got := Cap(tasks, 0); len(got) != 2 {
		t.Fatalf("expected unbounded cap to return all, got %d", len(got))
	}
	if got := Cap(tasks, 5); len(got) != 2 {
		t.Fatalf("expected short input returned whole, got %d", len(got))
	}
}

func TestSelect_WindowBoundariesAreInclusive(t *testing.T) {
	s := testutil.NewTestStore(t)
	now := time.Now().UTC()
	start, end := Window(now, 1)

	testutil.MustCreateTask(t, s, model.Task{Name: "at start", DueDate: start})
	testutil.MustCreateTask(t, s, model.Task{Name: "at end", DueDate: end.Truncate(time.Second)})
	testutil.MustCreateTask(t, s, model.Task{Name: "before start", DueDate: start.Add(-time.Second)})
	testutil.MustCreateTask(t, s, model.Task{Name: "after end", DueDate: end.Add(time.Second)})

	got, err := Select(context.Background(), s, Params{Now: now, HorizonDays: 1})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected exactly the boundary tasks, got %d", len(got))
	}
	if got[0].Name != "at start" || got[1].Name != "at end" {
		t.Fatalf("expected boundary tasks in order, got %q, %q", got[0].Name, got[1].Name)
	}
}

func TestSelect_ExcludesCompletedTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	now := time.Now().UTC()
	start, _ := Window(now, 2)

	testutil.MustCreateTask(t, s, model.Task{
		Name: "done", DueDate: start.Add(time.Hour), Status: model.StatusCompleted,
	})
	testutil.MustCreateTask(t, s, model.Task{
		Name: "open", DueDate: start.Add(2 * time.Hour), Status: model.StatusPending,
	})

	got, err := Select(context.Background(), s, Params{Now: now, HorizonDays: 2})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if len(got) != 1 || got[0].Name != "open" {
		t.Fatalf("expected only the open task, got %v", got)
	}
}

func TestSelect_AppliesCap(t *testing.T) {
	s := testutil.NewTestStore(t)
	now := time.Now().UTC()
	start, _ := Window(now, 2)

	for i := 0; i < 7; i++ {
		testutil.MustCreateTask(t, s, model.Task{
			Name:    "task",
			DueDate: start.Add(time.Duration(i+1) * time.Hour),
		})
	}

	got, err := Select(context.Background(), s, Params{Now: now, HorizonDays: 2, Cap: 5})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(got))
	}
	last := got[4].DueDate
	if !last.Equal(start.Add(5 * time.Hour)) {
		t.Fatalf("expected the 5 earliest-due tasks, last due %v", last)
	}
}
