package model

import "time"

// Task status constants. Transitions are free-form: any status may
// follow any other.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Task priority constants.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ActiveStatuses are the statuses considered not-yet-finished. Tasks in
// these states are candidates for due-window selection.
var ActiveStatuses = []string{StatusPending, StatusInProgress}

// Task is a unit of agency work assigned to a person, optionally tied
// to a client, with a mandatory due date and an optional alert moment.
type Task struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	AssignedTo  string `json:"assigned_to" db:"assigned_to"`

	// ClientID and ClientName are a denormalized reference: the name is
	// cached alongside the foreign key so list views need no join. Both
	// are set together and removed together.
	ClientID   *string `json:"client_id,omitempty" db:"client_id"`
	ClientName *string `json:"client_name,omitempty" db:"client_name"`

	DueDate  time.Time `json:"due_date" db:"due_date"`
	Priority string    `json:"priority" db:"priority"`
	Status   string    `json:"status" db:"status"`

	// AlertDate is a user-set reminder moment independent of DueDate.
	// AlertFired records whether the reminder has been delivered; it is
	// reset to false whenever AlertDate is set or changed, and removed
	// together with AlertDate when the user clears the alert.
	AlertDate  *time.Time `json:"alert_date,omitempty" db:"alert_date"`
	AlertFired bool       `json:"alert_fired" db:"alert_fired"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// ValidPriority reports whether p is one of the known task priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
