package parking

import (
	"context"
	"time"

	"github.com/iliyamo/parking-lot-api/internal/billing"
	"github.com/iliyamo/parking-lot-api/internal/model"
)

// CheckInInput carries the vehicle and client identity for a check-in.
// Field validation (plate format, CPF checksum) happens at the HTTP
// boundary before the engine runs.
type CheckInInput struct {
	LicensePlate string
	CarBrand     string
	CarModel     string
	CarColor     string
	ClientCPF    string
}

// Engine orchestrates the space pool, the occupancy ledger and the
// billing calculator.  It is the sole writer of space state and ledger
// lifecycle transitions; each operation runs inside one store
// transaction so a failure after a claim rolls the space back to FREE
// rather than leaking it.
type Engine struct {
	store    Store
	tariff   billing.Tariff
	receipts *billing.ReceiptGenerator
}

// NewEngine returns an Engine over the given store and tariff.
func NewEngine(store Store, tariff billing.Tariff) *Engine {
	return &Engine{
		store:    store,
		tariff:   tariff,
		receipts: billing.NewReceiptGenerator(),
	}
}

// CheckIn admits a vehicle: it resolves the client by CPF, claims one
// free space, generates the receipt from the check-in instant and
// opens the ledger record, all in one transaction.  The space becomes
// visible as OCCUPIED to other claimers as soon as the transaction
// commits.  When the lot is full the claim fails immediately with
// ErrNoFreeSpace; the engine never queues.
func (e *Engine) CheckIn(ctx context.Context, in CheckInInput) (model.ParkingRecord, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return model.ParkingRecord{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	client, err := tx.ClientByCPF(ctx, in.ClientCPF)
	if err != nil {
		return model.ParkingRecord{}, err
	}

	space, err := tx.ClaimFreeSpace(ctx)
	if err != nil {
		return model.ParkingRecord{}, err
	}

	now := time.Now().UTC()
	rec := model.ParkingRecord{
		Receipt:      e.receipts.Generate(now),
		LicensePlate: in.LicensePlate,
		CarBrand:     in.CarBrand,
		CarModel:     in.CarModel,
		CarColor:     in.CarColor,
		ClientID:     client.ID,
		ClientCPF:    client.CPF,
		SpaceID:      space.ID,
		SpaceCode:    space.Code,
		EntryDate:    now,
	}
	if err := tx.OpenSession(ctx, &rec); err != nil {
		// Rolling back undoes the claim as well; the space never
		// stays OCCUPIED without an open ledger record.
		return model.ParkingRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ParkingRecord{}, err
	}
	committed = true
	return rec, nil
}

// CheckOut settles an open stay: it locks the open record, computes
// the fee from the elapsed time and the loyalty discount from the
// client's completed visits, closes the record and frees the space,
// all in one transaction.  A receipt that is unknown or already
// checked out fails with ErrReceiptNotFound; the conditional close
// guarantees that of two racing check-outs exactly one succeeds.
// Fee and discount stay separate fields; the engine never nets them.
func (e *Engine) CheckOut(ctx context.Context, receipt string) (model.ParkingRecord, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return model.ParkingRecord{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rec, err := tx.FindOpenByReceipt(ctx, receipt)
	if err != nil {
		return model.ParkingRecord{}, err
	}

	endDate := time.Now().UTC()
	value, err := e.tariff.ComputeCost(rec.EntryDate, endDate)
	if err != nil {
		return model.ParkingRecord{}, err
	}

	// Prior completed visits only; the stay being closed is not counted.
	visits, err := tx.CountClosedVisits(ctx, rec.ClientID)
	if err != nil {
		return model.ParkingRecord{}, err
	}
	discount := e.tariff.ComputeDiscount(value, visits)

	if err := tx.CloseSession(ctx, receipt, endDate, value, discount); err != nil {
		return model.ParkingRecord{}, err
	}
	if err := tx.ReleaseSpace(ctx, rec.SpaceID); err != nil {
		return model.ParkingRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ParkingRecord{}, err
	}
	committed = true

	rec.EndDate = &endDate
	rec.Value = &value
	rec.Discount = &discount
	return rec, nil
}

// GetByReceipt returns the record for a receipt in any state.
func (e *Engine) GetByReceipt(ctx context.Context, receipt string) (model.ParkingRecord, error) {
	return e.store.FindByReceipt(ctx, receipt)
}
