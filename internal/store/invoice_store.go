package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/amestudio/agencydesk/internal/model"
)

// CreateInvoice inserts a new invoice. It assigns the next sequential
// invoice number for the issue year, recomputes the monetary totals,
// and snapshots the client name.
func (s *SQLiteStore) CreateInvoice(
	ctx context.Context,
	inv model.Invoice,
) (*model.Invoice, error) {
	if inv.ClientID == "" {
		return nil, fmt.Errorf("invoice client must be set")
	}
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("invoice must have at least one line item")
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.Status == "" {
		inv.Status = model.InvoiceStatusDraft
	}

	now := time.Now().UTC()
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = now
	}
	if inv.DueAt.IsZero() {
		inv.DueAt = inv.IssuedAt.AddDate(0, 1, 0)
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now
	inv.ComputeTotals()

	client, err := s.GetClientByID(ctx, inv.ClientID)
	if err != nil {
		return nil, err
	}
	inv.ClientName = client.Name

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	number, err := nextInvoiceNumber(ctx, tx, inv.IssuedAt.Year())
	if err != nil {
		return nil, err
	}
	inv.Number = number

	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling invoice items: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (
			id, number, client_id, client_name, items,
			subtotal, tax_rate, tax_amount, total,
			status, issued_at, due_at, paid_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Number, inv.ClientID, inv.ClientName, string(itemsJSON),
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total,
		inv.Status, inv.IssuedAt, inv.DueAt, utcOrNil(inv.PaidAt),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing invoice: %w", err)
	}
	return &inv, nil
}

// UpdateInvoice updates the line items, tax rate, status, and due date
// of an existing invoice, recomputing the totals.
func (s *SQLiteStore) UpdateInvoice(ctx context.Context, inv model.Invoice) error {
	if len(inv.Items) == 0 {
		return fmt.Errorf("invoice must have at least one line item")
	}

	inv.UpdatedAt = time.Now().UTC()
	inv.ComputeTotals()

	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("marshaling invoice items: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET
			items = ?, subtotal = ?, tax_rate = ?, tax_amount = ?, total = ?,
			status = ?, due_at = ?, updated_at = ?
		WHERE id = ?`,
		string(itemsJSON), inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total,
		inv.Status, inv.DueAt, inv.UpdatedAt,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating invoice %s: %w", inv.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("invoice %s not found", inv.ID)
	}
	return nil
}

// MarkInvoicePaid records payment of an invoice.
func (s *SQLiteStore) MarkInvoicePaid(ctx context.Context, id string) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET status = ?, paid_at = ?, updated_at = ? WHERE id = ?",
		model.InvoiceStatusPaid, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("marking invoice %s paid: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("invoice %s not found", id)
	}
	return nil
}

// GetInvoiceByID retrieves a single invoice by its ID.
func (s *SQLiteStore) GetInvoiceByID(
	ctx context.Context,
	id string,
) (*model.Invoice, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM invoices WHERE id = ?", id)

	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s not found", id)
		}
		return nil, fmt.Errorf("getting invoice %s: %w", id, err)
	}

	return &inv, nil
}

// GetInvoices retrieves invoices matching the filter, newest first.
func (s *SQLiteStore) GetInvoices(
	ctx context.Context,
	filter InvoiceFilter,
) ([]model.Invoice, error) {
	var conditions []string
	var args []interface{}

	if filter.ClientID != nil {
		conditions = append(conditions, "client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}

	query := "SELECT * FROM invoices"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY issued_at DESC, number DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

// nextInvoiceNumber returns the next sequential number for the given
// year, formatted INV-YYYY-NNNN.
func nextInvoiceNumber(ctx context.Context, tx *sqlx.Tx, year int) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", year)

	var count int
	err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM invoices WHERE number LIKE ?", prefix+"%")
	if err != nil {
		return "", fmt.Errorf("counting invoices for %d: %w", year, err)
	}

	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// scanInvoice scans an invoice row in table column order.
func scanInvoice(row scanner) (model.Invoice, error) {
	var (
		inv       model.Invoice
		itemsJSON string
		paidAt    *time.Time
	)

	err := row.Scan(
		&inv.ID, &inv.Number, &inv.ClientID, &inv.ClientName, &itemsJSON,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Total,
		&inv.Status, &inv.IssuedAt, &inv.DueAt, &paidAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("scanning invoice row: %w", err)
	}

	inv.PaidAt = paidAt

	if itemsJSON != "" {
		if err := json.Unmarshal([]byte(itemsJSON), &inv.Items); err != nil {
			return model.Invoice{}, fmt.Errorf("unmarshaling invoice items: %w", err)
		}
	}

	return inv, nil
}
