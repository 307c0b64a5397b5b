package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-lot-api/internal/model"
)

// ClientRepo provides data access to the clients table.  Client
// profiles are created by CLIENT users and read by the parking engine
// when resolving a check-in's CPF.  The core never mutates a client
// after creation.
type ClientRepo struct {
	DB *sql.DB
}

// NewClientRepo returns a new ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{DB: db} }

// Create inserts a client profile owned by the given user.  The unique
// index on cpf turns duplicate registrations into ErrCPFExists.
func (r *ClientRepo) Create(ctx context.Context, name, cpf string, userID uint64) (model.Client, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO clients (name, cpf, user_id) VALUES (?, ?, ?)",
		name, cpf, userID)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Client{}, ErrCPFExists
		}
		return model.Client{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Client{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns the client with the given id or ErrClientNotFound.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (model.Client, error) {
	return r.get(ctx, "id = ?", id)
}

// GetByCPF returns the client with the given CPF or ErrClientNotFound.
func (r *ClientRepo) GetByCPF(ctx context.Context, cpf string) (model.Client, error) {
	return r.get(ctx, "cpf = ?", cpf)
}

// GetByUserID returns the client profile owned by the given user
// account, or ErrClientNotFound when the user has not registered one.
func (r *ClientRepo) GetByUserID(ctx context.Context, userID uint64) (model.Client, error) {
	return r.get(ctx, "user_id = ?", userID)
}

func (r *ClientRepo) get(ctx context.Context, where string, arg interface{}) (model.Client, error) {
	var c model.Client
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, cpf, user_id, created_at, updated_at FROM clients WHERE "+where+" LIMIT 1",
		arg).Scan(&c.ID, &c.Name, &c.CPF, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrClientNotFound
	}
	return c, err
}

// List returns one page of clients ordered by id.  Page numbers start
// at zero; size is clamped by the handler.
func (r *ClientRepo) List(ctx context.Context, page, size int) ([]model.Client, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, cpf, user_id, created_at, updated_at FROM clients ORDER BY id LIMIT ? OFFSET ?",
		size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clients := make([]model.Client, 0)
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CPF, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
