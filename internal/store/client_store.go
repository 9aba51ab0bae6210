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

// CreateClient inserts a new client. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateClient(
	ctx context.Context,
	client model.Client,
) (*model.Client, error) {
	if strings.TrimSpace(client.Name) == "" {
		return nil, fmt.Errorf("client name must not be empty")
	}
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, name, email, phone, company, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		client.ID, client.Name, client.Email, client.Phone,
		client.Company, client.Notes,
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return &client, nil
}

// UpdateClient updates an existing client and refreshes the denormalized
// client name cached on its tasks and invoices.
func (s *SQLiteStore) UpdateClient(ctx context.Context, client model.Client) error {
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("client name must not be empty")
	}

	client.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE clients SET
			name = ?, email = ?, phone = ?, company = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		client.Name, client.Email, client.Phone, client.Company,
		client.Notes, client.UpdatedAt,
		client.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client %s: %w", client.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("client %s not found", client.ID)
	}

	// Keep the cached copies in sync with the canonical name.
	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET client_name = ? WHERE client_id = ?",
		client.Name, client.ID,
	); err != nil {
		return fmt.Errorf("refreshing client name on tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE invoices SET client_name = ? WHERE client_id = ?",
		client.Name, client.ID,
	); err != nil {
		return fmt.Errorf("refreshing client name on invoices: %w", err)
	}

	return tx.Commit()
}

// DeleteClient removes a client. Tasks keep their history but lose the
// client reference; both denormalized fields are removed together.
func (s *SQLiteStore) DeleteClient(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET client_id = NULL, client_name = NULL WHERE client_id = ?",
		id,
	); err != nil {
		return fmt.Errorf("detaching tasks from client %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting client %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("client %s not found", id)
	}

	return tx.Commit()
}

// GetClientByID retrieves a single client by its ID.
func (s *SQLiteStore) GetClientByID(
	ctx context.Context,
	id string,
) (*model.Client, error) {
	row := s.db.QueryRowxContext(ctx, "SELECT * FROM clients WHERE id = ?", id)

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s not found", id)
		}
		return nil, fmt.Errorf("getting client %s: %w", id, err)
	}

	return &client, nil
}

// GetClients retrieves all clients ordered by name.
func (s *SQLiteStore) GetClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM clients ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}

	return clients, rows.Err()
}
