package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParkingRecord is the durable record of one vehicle's stay, from
// check-in to check-out.  A record is open while EndDate is nil and
// becomes closed (and immutable) once check-out sets EndDate, Value
// and Discount in a single update.  Records are never deleted; they
// form the audit trail and the loyalty-visit count.
//
// Fields:
//  ID           – primary key identifier.
//  Receipt      – unique receipt code generated at check-in.
//  LicensePlate – vehicle plate (Mercosul format).
//  CarBrand     – vehicle brand.
//  CarModel     – vehicle model.
//  CarColor     – vehicle color.
//  ClientID     – client who parked the vehicle.
//  ClientCPF    – denormalized CPF of the client (for responses).
//  SpaceID      – space occupied during the stay.
//  SpaceCode    – denormalized code of the space.
//  EntryDate    – check-in timestamp (UTC).
//  EndDate      – check-out timestamp, nil while the stay is open.
//  Value        – computed parking fee, nil while open.
//  Discount     – computed loyalty discount, nil while open.  Value and
//                 Discount are independent; callers needing the net
//                 payable subtract them themselves.
type ParkingRecord struct {
	ID           uint64           // client_has_spaces.id
	Receipt      string           // client_has_spaces.receipt_code
	LicensePlate string           // client_has_spaces.license_plate
	CarBrand     string           // client_has_spaces.car_brand
	CarModel     string           // client_has_spaces.car_model
	CarColor     string           // client_has_spaces.car_color
	ClientID     uint64           // client_has_spaces.client_id
	ClientCPF    string           // clients.cpf (joined)
	SpaceID      uint64           // client_has_spaces.space_id
	SpaceCode    string           // car_spaces.code (joined)
	EntryDate    time.Time        // client_has_spaces.entry_date
	EndDate      *time.Time       // client_has_spaces.end_date (nullable)
	Value        *decimal.Decimal // client_has_spaces.value (nullable)
	Discount     *decimal.Decimal // client_has_spaces.discount (nullable)
}

// Open reports whether the stay is still in progress.
func (r *ParkingRecord) Open() bool { return r.EndDate == nil }
