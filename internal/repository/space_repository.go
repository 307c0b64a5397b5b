package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-lot-api/internal/model"
)

// SpaceRepo provides data access to the car_spaces table.  The pool of
// spaces is fixed at runtime except for administrative registration.
// Claim and release run inside the caller's transaction so that space
// state and ledger state commit or roll back as one unit.
type SpaceRepo struct {
	DB *sql.DB
}

// NewSpaceRepo returns a new SpaceRepo bound to the given database.
func NewSpaceRepo(db *sql.DB) *SpaceRepo { return &SpaceRepo{DB: db} }

// Create registers a new space with the given code, initially FREE.
// The unique index on code turns concurrent duplicate registrations
// into ErrCodeExists.
func (r *SpaceRepo) Create(ctx context.Context, code string) (model.Space, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO car_spaces (code, status) VALUES (?, ?)",
		code, model.SpaceFree)
	if err != nil {
		if isDuplicateKey(err) {
			return model.Space{}, ErrCodeExists
		}
		return model.Space{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Space{}, err
	}
	return r.getByID(ctx, uint64(id))
}

// GetByCode returns the space with the given code or ErrSpaceNotFound.
func (r *SpaceRepo) GetByCode(ctx context.Context, code string) (model.Space, error) {
	var s model.Space
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, code, status, created_at, updated_at FROM car_spaces WHERE code = ? LIMIT 1",
		code).Scan(&s.ID, &s.Code, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Space{}, ErrSpaceNotFound
	}
	return s, err
}

func (r *SpaceRepo) getByID(ctx context.Context, id uint64) (model.Space, error) {
	var s model.Space
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, code, status, created_at, updated_at FROM car_spaces WHERE id = ? LIMIT 1",
		id).Scan(&s.ID, &s.Code, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Space{}, ErrSpaceNotFound
	}
	return s, err
}

// ClaimFreeSpaceTx atomically selects one FREE space and marks it
// OCCUPIED inside the given transaction.  The row is locked before the
// update, and SKIP LOCKED steers concurrent claimers onto different
// rows instead of serializing on the first free one.  Selection among
// free spaces is lowest id first; callers must not rely on that order.
// When every space is occupied it returns ErrNoFreeSpace without
// blocking.
func (r *SpaceRepo) ClaimFreeSpaceTx(ctx context.Context, tx *sql.Tx) (model.Space, error) {
	var s model.Space
	err := tx.QueryRowContext(ctx,
		`SELECT id, code, status, created_at, updated_at
		 FROM car_spaces
		 WHERE status = ?
		 ORDER BY id
		 LIMIT 1
		 FOR UPDATE SKIP LOCKED`,
		model.SpaceFree).Scan(&s.ID, &s.Code, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Space{}, ErrNoFreeSpace
	}
	if err != nil {
		return model.Space{}, err
	}
	// The guard on status keeps the update honest even though the row
	// lock already excludes racing claimers.
	res, err := tx.ExecContext(ctx,
		"UPDATE car_spaces SET status = ? WHERE id = ? AND status = ?",
		model.SpaceOccupied, s.ID, model.SpaceFree)
	if err != nil {
		return model.Space{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Space{}, err
	}
	if n == 0 {
		return model.Space{}, ErrNoFreeSpace
	}
	s.Status = model.SpaceOccupied
	return s, nil
}

// ReleaseSpaceTx transitions an OCCUPIED space back to FREE inside the
// given transaction.  Releasing a space that is already free fails with
// ErrSpaceNotOccupied so that double releases surface instead of
// silently succeeding; an unknown id fails with ErrSpaceNotFound.
func (r *SpaceRepo) ReleaseSpaceTx(ctx context.Context, tx *sql.Tx, spaceID uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE car_spaces SET status = ? WHERE id = ? AND status = ?",
		model.SpaceFree, spaceID, model.SpaceOccupied)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var status string
	err = tx.QueryRowContext(ctx,
		"SELECT status FROM car_spaces WHERE id = ? LIMIT 1", spaceID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSpaceNotFound
	}
	if err != nil {
		return err
	}
	return ErrSpaceNotOccupied
}
