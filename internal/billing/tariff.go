// Package billing implements the pure pricing rules of the parking lot:
// the tiered cost of a stay, the loyalty discount and the receipt code
// format.  Nothing in this package touches storage or the clock beyond
// the timestamps it is handed.
package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/parking-lot-api/internal/config"
)

// ErrInvalidInterval is returned when the checkout instant precedes the
// check-in instant.  Such an interval can only come from caller error
// and must be rejected before any state changes.
var ErrInvalidInterval = errors.New("exit time precedes entry time")

// Tariff prices parking stays.  All amounts are computed with exact
// decimals and rounded half-to-even to two places, the conventional
// currency rounding that avoids systematic upward bias.
type Tariff struct {
	first15  decimal.Decimal
	first60  decimal.Decimal
	extra15  decimal.Decimal
	discount decimal.Decimal
}

// NewTariff builds a Tariff from the configured price table.
func NewTariff(cfg config.Tariff) Tariff {
	return Tariff{
		first15:  cfg.First15,
		first60:  cfg.First60,
		extra15:  cfg.Extra15,
		discount: cfg.Discount,
	}
}

// ComputeCost returns the fee for a stay from entry to exit.
//
//	duration <= 15 min  -> first-15 flat amount
//	duration <= 60 min  -> first-60 flat amount
//	duration  > 60 min  -> first-60 + extra-15 per started 15 minute block
//
// Durations are truncated to whole minutes before tiering, and any
// partial block past the first hour is charged as a full block.
func (t Tariff) ComputeCost(entry, exit time.Time) (decimal.Decimal, error) {
	if exit.Before(entry) {
		return decimal.Decimal{}, ErrInvalidInterval
	}
	minutes := int64(exit.Sub(entry) / time.Minute)

	var total decimal.Decimal
	switch {
	case minutes <= 15:
		total = t.first15
	case minutes <= 60:
		total = t.first60
	default:
		blocks := (minutes - 60 + 14) / 15 // ceiling division
		total = t.first60.Add(t.extra15.Mul(decimal.NewFromInt(blocks)))
	}
	return total.RoundBank(2), nil
}

// ComputeDiscount returns the loyalty discount on cost for a client who
// has priorClosedVisits completed stays before the current one.  Every
// tenth completed visit earns the configured rate (30% by default);
// all other visits earn zero.
func (t Tariff) ComputeDiscount(cost decimal.Decimal, priorClosedVisits int64) decimal.Decimal {
	if priorClosedVisits > 0 && priorClosedVisits%10 == 0 {
		return cost.Mul(t.discount).RoundBank(2)
	}
	return decimal.Zero.RoundBank(2)
}
