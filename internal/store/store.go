package store

import (
	"context"
	"time"

	"github.com/amestudio/agencydesk/internal/model"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Statuses   []string   // match any of these statuses
	DueFrom    *time.Time // due_date >= DueFrom (inclusive)
	DueTo      *time.Time // due_date <= DueTo (inclusive)
	ClientID   *string
	AssignedTo *string
	Query      *string // search name + description
	SortBy     string  // "due_date", "priority", "created_at", "updated_at", "name"
	SortDesc   bool
	Limit      int
	Offset     int
}

// InvoiceFilter controls filtering for invoice queries.
type InvoiceFilter struct {
	ClientID *string
	Status   *string
	Limit    int
	Offset   int
}

// Store defines the persistence interface for tasks, clients, and
// invoices. The database is the single source of truth; everything held
// in memory elsewhere is a short-lived projection.
type Store interface {
	// === Tasks ===
	//
	// Tasks are never hard-deleted; they are closed by moving them to
	// the completed status.

	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	UpdateTaskStatus(ctx context.Context, id, status string) error
	SetTaskAlert(ctx context.Context, id string, alertDate time.Time) error
	ClearTaskAlert(ctx context.Context, id string) error
	MarkAlertFired(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	GetPendingAlerts(ctx context.Context, now time.Time) ([]model.Task, error)

	// === Clients ===

	CreateClient(ctx context.Context, client model.Client) (*model.Client, error)
	UpdateClient(ctx context.Context, client model.Client) error
	DeleteClient(ctx context.Context, id string) error
	GetClientByID(ctx context.Context, id string) (*model.Client, error)
	GetClients(ctx context.Context) ([]model.Client, error)

	// === Invoices ===

	CreateInvoice(ctx context.Context, inv model.Invoice) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, inv model.Invoice) error
	MarkInvoicePaid(ctx context.Context, id string) error
	GetInvoiceByID(ctx context.Context, id string) (*model.Invoice, error)
	GetInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error)
}
