package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-lot-api/internal/model"
	"github.com/iliyamo/parking-lot-api/internal/parking"
)

// Store adapts the SQL repositories to the parking engine's Store
// interface.  One Store transaction wraps one *sql.Tx, so every engine
// operation commits or rolls back its space and ledger effects
// together.
type Store struct {
	DB      *sql.DB
	Spaces  *SpaceRepo
	Clients *ClientRepo
	Parking *ParkingRepo
}

// NewStore builds the engine-facing store over the shared DB handle.
func NewStore(db *sql.DB, spaces *SpaceRepo, clients *ClientRepo, parkingRepo *ParkingRepo) *Store {
	return &Store{DB: db, Spaces: spaces, Clients: clients, Parking: parkingRepo}
}

// Begin opens a database transaction for one engine operation.
func (s *Store) Begin(ctx context.Context) (parking.StoreTx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &storeTx{tx: tx, store: s}, nil
}

// FindByReceipt delegates to the ledger's transactionless lookup.
func (s *Store) FindByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error) {
	return s.Parking.FindByReceipt(ctx, receipt)
}

// storeTx routes the engine's per-transaction calls to the repositories'
// Tx methods over the wrapped *sql.Tx.
type storeTx struct {
	tx    *sql.Tx
	store *Store
}

func (t *storeTx) Commit() error   { return t.tx.Commit() }
func (t *storeTx) Rollback() error { return t.tx.Rollback() }

func (t *storeTx) ClientByCPF(ctx context.Context, cpf string) (model.Client, error) {
	// Client rows are immutable during a stay; the plain read suffices.
	return t.store.Clients.GetByCPF(ctx, cpf)
}

func (t *storeTx) ClaimFreeSpace(ctx context.Context) (model.Space, error) {
	return t.store.Spaces.ClaimFreeSpaceTx(ctx, t.tx)
}

func (t *storeTx) ReleaseSpace(ctx context.Context, spaceID uint64) error {
	return t.store.Spaces.ReleaseSpaceTx(ctx, t.tx, spaceID)
}

func (t *storeTx) OpenSession(ctx context.Context, rec *model.ParkingRecord) error {
	return t.store.Parking.CreateTx(ctx, t.tx, rec)
}

func (t *storeTx) FindOpenByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error) {
	return t.store.Parking.FindOpenByReceiptTx(ctx, t.tx, receipt)
}

func (t *storeTx) CountClosedVisits(ctx context.Context, clientID uint64) (int64, error) {
	return t.store.Parking.CountClosedByClientTx(ctx, t.tx, clientID)
}

func (t *storeTx) CloseSession(ctx context.Context, receipt string, endDate time.Time, value, discount decimal.Decimal) error {
	return t.store.Parking.CloseTx(ctx, t.tx, receipt, endDate, value, discount)
}
