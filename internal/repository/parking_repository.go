package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-lot-api/internal/model"
)

// ParkingRepo is the occupancy ledger: one row per physical visit in
// the client_has_spaces table.  Rows are inserted open at check-in and
// mutated exactly once at check-out; they are never deleted.  The
// unique index on receipt_code and the end_date IS NULL guards are what
// make concurrent check-outs race-safe at the storage layer.
type ParkingRepo struct {
	DB *sql.DB
}

// NewParkingRepo returns a new ParkingRepo bound to the given database.
func NewParkingRepo(db *sql.DB) *ParkingRepo { return &ParkingRepo{DB: db} }

// selectRecord is the shared projection joining the ledger with client
// and space rows so callers receive CPF and space code alongside the
// raw foreign keys.
const selectRecord = `SELECT p.id, p.receipt_code, p.license_plate, p.car_brand, p.car_model, p.car_color,
       p.client_id, c.cpf, p.space_id, s.code, p.entry_date, p.end_date, p.value, p.discount
FROM client_has_spaces p
JOIN clients c ON c.id = p.client_id
JOIN car_spaces s ON s.id = p.space_id`

// scanRecord reads one joined row into a model.ParkingRecord.
func scanRecord(row interface{ Scan(...interface{}) error }) (model.ParkingRecord, error) {
	var (
		rec      model.ParkingRecord
		endDate  sql.NullTime
		value    decimal.NullDecimal
		discount decimal.NullDecimal
	)
	err := row.Scan(
		&rec.ID, &rec.Receipt, &rec.LicensePlate, &rec.CarBrand, &rec.CarModel, &rec.CarColor,
		&rec.ClientID, &rec.ClientCPF, &rec.SpaceID, &rec.SpaceCode, &rec.EntryDate,
		&endDate, &value, &discount,
	)
	if err != nil {
		return model.ParkingRecord{}, err
	}
	if endDate.Valid {
		t := endDate.Time.UTC()
		rec.EndDate = &t
	}
	if value.Valid {
		v := value.Decimal
		rec.Value = &v
	}
	if discount.Valid {
		d := discount.Decimal
		rec.Discount = &d
	}
	rec.EntryDate = rec.EntryDate.UTC()
	return rec, nil
}

// CreateTx inserts a new open ledger record within the transaction and
// populates the generated id.  EndDate, Value and Discount start null.
// A receipt collision (lost race on the unique index) is reported as
// ErrDuplicateReceipt so the engine can fail the whole check-in.
func (r *ParkingRepo) CreateTx(ctx context.Context, tx *sql.Tx, rec *model.ParkingRecord) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO client_has_spaces
		 (receipt_code, license_plate, car_brand, car_model, car_color, client_id, space_id, entry_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Receipt, rec.LicensePlate, rec.CarBrand, rec.CarModel, rec.CarColor,
		rec.ClientID, rec.SpaceID, rec.EntryDate.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReceipt
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// FindOpenByReceiptTx returns the open record for the receipt, locking
// the row for the remainder of the transaction.  Closed records are
// treated as absent (checkout is single use); both cases report
// ErrReceiptNotFound.
func (r *ParkingRepo) FindOpenByReceiptTx(ctx context.Context, tx *sql.Tx, receipt string) (model.ParkingRecord, error) {
	rec, err := scanRecord(tx.QueryRowContext(ctx,
		selectRecord+" WHERE p.receipt_code = ? AND p.end_date IS NULL FOR UPDATE", receipt))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ParkingRecord{}, ErrReceiptNotFound
	}
	return rec, err
}

// FindByReceipt returns the record for the receipt regardless of state,
// or ErrReceiptNotFound.  Used by the read-only lookup endpoint.
func (r *ParkingRepo) FindByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error) {
	rec, err := scanRecord(r.DB.QueryRowContext(ctx,
		selectRecord+" WHERE p.receipt_code = ? LIMIT 1", receipt))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ParkingRecord{}, ErrReceiptNotFound
	}
	return rec, err
}

// CountClosedByClientTx returns how many completed visits the client
// has on record, not counting any stay still open.
func (r *ParkingRepo) CountClosedByClientTx(ctx context.Context, tx *sql.Tx, clientID uint64) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM client_has_spaces WHERE client_id = ? AND end_date IS NOT NULL",
		clientID).Scan(&n)
	return n, err
}

// CloseTx sets the exit timestamp, fee and discount on the open record
// within the transaction.  The end_date IS NULL guard makes the close
// conditional: when two check-outs race, the loser affects zero rows
// and receives ErrSessionClosed.
func (r *ParkingRepo) CloseTx(ctx context.Context, tx *sql.Tx, receipt string, endDate time.Time, value, discount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE client_has_spaces SET end_date = ?, value = ?, discount = ? WHERE receipt_code = ? AND end_date IS NULL",
		endDate.UTC(), value, discount, receipt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionClosed
	}
	return nil
}

// ListByClientCPF returns one page of the client's visits ordered by
// entry date, newest first.  Entry date is the stable ordering key that
// keeps pagination deterministic.
func (r *ParkingRepo) ListByClientCPF(ctx context.Context, cpf string, page, size int) ([]model.ParkingRecord, error) {
	return r.list(ctx, "c.cpf = ?", cpf, page, size)
}

// ListByUserID returns one page of visits for the client profile owned
// by the given user account, ordered by entry date, newest first.
func (r *ParkingRepo) ListByUserID(ctx context.Context, userID uint64, page, size int) ([]model.ParkingRecord, error) {
	return r.list(ctx, "c.user_id = ?", userID, page, size)
}

func (r *ParkingRepo) list(ctx context.Context, where string, arg interface{}, page, size int) ([]model.ParkingRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		selectRecord+" WHERE "+where+" ORDER BY p.entry_date DESC, p.id DESC LIMIT ? OFFSET ?",
		arg, size, page*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]model.ParkingRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
