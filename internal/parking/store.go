// Package parking implements the parking engine: the two operations
// that move money and metal, CheckIn and CheckOut.  The engine owns
// the transaction boundary; every storage effect of one operation
// commits or rolls back as a single unit through the Store interface.
package parking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-lot-api/internal/model"
)

// Store opens transactions against the parking state.  The production
// implementation wraps the MySQL repositories; tests substitute an
// in-memory store.
type Store interface {
	// Begin starts a transaction covering spaces, clients and the
	// occupancy ledger.
	Begin(ctx context.Context) (StoreTx, error)

	// FindByReceipt is a read-only ledger lookup that matches both open
	// and closed records.  It needs no transaction.
	FindByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error)
}

// StoreTx is one transaction over the parking state.  Implementations
// must guarantee the conditional semantics documented per method;
// the engine relies on them for its race-safety.
type StoreTx interface {
	Commit() error
	Rollback() error

	// ClientByCPF resolves a client identity.
	// Fails with repository.ErrClientNotFound.
	ClientByCPF(ctx context.Context, cpf string) (model.Client, error)

	// ClaimFreeSpace atomically selects one FREE space and marks it
	// OCCUPIED.  Concurrent claims never obtain the same space.
	// Fails with repository.ErrNoFreeSpace instead of blocking.
	ClaimFreeSpace(ctx context.Context) (model.Space, error)

	// ReleaseSpace transitions an OCCUPIED space back to FREE.
	// Fails with repository.ErrSpaceNotOccupied on a double release.
	ReleaseSpace(ctx context.Context, spaceID uint64) error

	// OpenSession persists a new open ledger record.
	// Fails with repository.ErrDuplicateReceipt on a receipt collision.
	OpenSession(ctx context.Context, rec *model.ParkingRecord) error

	// FindOpenByReceipt returns the open record for the receipt,
	// locked until the transaction ends.  Closed records count as
	// absent.  Fails with repository.ErrReceiptNotFound.
	FindOpenByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error)

	// CountClosedVisits counts the client's completed stays.
	CountClosedVisits(ctx context.Context, clientID uint64) (int64, error)

	// CloseSession sets exit time, fee and discount on the open record.
	// The update is conditional on the record still being open; a lost
	// race fails with repository.ErrSessionClosed.
	CloseSession(ctx context.Context, receipt string, endDate time.Time, value, discount decimal.Decimal) error
}
