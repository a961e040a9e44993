package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alphalabs/mobile-api/internal/model"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrDuplicateClient = errors.New("client already exists")
)

// ClientRepository handles tenant persistence operations.
type ClientRepository struct {
	db *DB
}

// NewClientRepository creates a new ClientRepository.
func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// GetByID retrieves a client by its ID.
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	query := `SELECT id, name, description, is_active, created_at, updated_at FROM clients WHERE id = ?`

	client := &model.Client{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, r.db.rebind(query), id).Scan(
		&client.ID, &client.Name, &description, &client.IsActive, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	client.Description = description.String
	return client, nil
}

// CreateWithID inserts a client using the ID already set on the struct.
// It returns ErrDuplicateClient when that ID is taken.
func (r *ClientRepository) CreateWithID(ctx context.Context, client *model.Client) error {
	query := `INSERT INTO clients (id, name, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := nowUTC()
	_, err := r.db.ExecContext(ctx, r.db.rebind(query),
		client.ID, client.Name, client.Description, client.IsActive, now, now,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateClient
		}
		return err
	}

	// An explicit id leaves the postgres sequence behind.
	if r.db.Dialect == DialectPostgres {
		_, err := r.db.ExecContext(ctx,
			`SELECT setval(pg_get_serial_sequence('clients', 'id'), (SELECT MAX(id) FROM clients))`)
		if err != nil {
			return fmt.Errorf("advancing clients sequence: %w", err)
		}
	}

	client.CreatedAt = now
	client.UpdatedAt = now
	return nil
}
