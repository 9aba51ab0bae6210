package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amestudio/agencydesk/internal/model"
)

// CreateTask inserts a new task. Generates a UUID if ID is empty and
// applies status/priority defaults. The due date is mandatory.
func (s *SQLiteStore) CreateTask(
	ctx context.Context,
	task model.Task,
) (*model.Task, error) {
	if strings.TrimSpace(task.Name) == "" {
		return nil, fmt.Errorf("task name must not be empty")
	}
	if task.DueDate.IsZero() {
		return nil, fmt.Errorf("task due date must be set")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if !model.ValidStatus(task.Status) {
		return nil, fmt.Errorf("invalid task status %q", task.Status)
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(task.Priority) {
		return nil, fmt.Errorf("invalid task priority %q", task.Priority)
	}

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	// A freshly set alert has never fired.
	task.AlertFired = false

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, name, description, assigned_to,
			client_id, client_name,
			due_date, priority, status,
			alert_date, alert_fired,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Description, task.AssignedTo,
		task.ClientID, task.ClientName,
		task.DueDate.UTC(), task.Priority, task.Status,
		utcOrNil(task.AlertDate), boolToInt(task.AlertFired),
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	return &task, nil
}

// UpdateTask updates the mutable fields of an existing task. The alert
// flag follows the alert date: a newly set or changed alert date resets
// alert_fired to false, and a cleared alert date removes both.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	if strings.TrimSpace(task.Name) == "" {
		return fmt.Errorf("task name must not be empty")
	}
	if task.DueDate.IsZero() {
		return fmt.Errorf("task due date must be set")
	}
	if !model.ValidStatus(task.Status) {
		return fmt.Errorf("invalid task status %q", task.Status)
	}
	if !model.ValidPriority(task.Priority) {
		return fmt.Errorf("invalid task priority %q", task.Priority)
	}

	existing, err := s.GetTaskByID(ctx, task.ID)
	if err != nil {
		return err
	}

	alertFired := existing.AlertFired
	switch {
	case task.AlertDate == nil:
		// Alert removed: both fields are cleared together.
		alertFired = false
	case existing.AlertDate == nil || !existing.AlertDate.Equal(*task.AlertDate):
		// Alert newly set or moved: it has not fired yet.
		alertFired = false
	}

	task.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			name = ?, description = ?, assigned_to = ?,
			client_id = ?, client_name = ?,
			due_date = ?, priority = ?, status = ?,
			alert_date = ?, alert_fired = ?,
			updated_at = ?
		WHERE id = ?`,
		task.Name, task.Description, task.AssignedTo,
		task.ClientID, task.ClientName,
		task.DueDate.UTC(), task.Priority, task.Status,
		utcOrNil(task.AlertDate), boolToInt(alertFired),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", task.ID)
	}
	return nil
}

// UpdateTaskStatus changes only the status of a task. Transitions are
// free-form; any status may follow any other.
func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, id, status string) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("invalid task status %q", status)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating status of task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// SetTaskAlert sets or moves the alert moment of a task and resets the
// fired flag.
func (s *SQLiteStore) SetTaskAlert(
	ctx context.Context,
	id string,
	alertDate time.Time,
) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET alert_date = ?, alert_fired = 0, updated_at = ? WHERE id = ?",
		alertDate.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting alert on task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// ClearTaskAlert removes the alert moment and the fired flag together.
func (s *SQLiteStore) ClearTaskAlert(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET alert_date = NULL, alert_fired = 0, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("clearing alert on task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// MarkAlertFired records that the alert for a task has been delivered.
func (s *SQLiteStore) MarkAlertFired(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET alert_fired = 1, updated_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("marking alert fired on task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(
	ctx context.Context,
	id string,
) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s not found", id)
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	return &task, nil
}

// GetTasks retrieves tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	filter TaskFilter,
) ([]model.Task, error) {
	query, args := buildTaskQuery(filter)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetPendingAlerts retrieves active tasks whose alert moment has
// arrived but has not fired yet, oldest alert first.
func (s *SQLiteStore) GetPendingAlerts(
	ctx context.Context,
	now time.Time,
) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM tasks
		WHERE alert_fired = 0
		  AND alert_date IS NOT NULL
		  AND alert_date <= ?
		  AND status != ?
		ORDER BY alert_date ASC, id ASC`,
		now.UTC(), model.StatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("querying pending alerts: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// buildTaskQuery constructs the SQL query and args for a TaskFilter.
func buildTaskQuery(filter TaskFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, st)
		}
		conditions = append(conditions,
			"status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.DueFrom != nil {
		conditions = append(conditions, "due_date >= ?")
		args = append(args, filter.DueFrom.UTC())
	}
	if filter.DueTo != nil {
		conditions = append(conditions, "due_date <= ?")
		args = append(args, filter.DueTo.UTC())
	}
	if filter.ClientID != nil {
		conditions = append(conditions, "client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.AssignedTo != nil {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, *filter.AssignedTo)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(name LIKE ? OR description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	// Determine sort column.
	sortBy := "due_date"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"name":       true,
			"status":     true,
			"priority":   true,
			"due_date":   true,
			"created_at": true,
			"updated_at": true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	// Secondary id ordering keeps results deterministic when the sort
	// column has ties.
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, args
}

// utcOrNil normalizes an optional time to UTC for storage.
func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
