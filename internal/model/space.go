package model

import "time"

// Space states.  A space is either free or holds exactly one vehicle;
// there is no intermediate state.
const (
	SpaceFree     = "FREE"
	SpaceOccupied = "OCCUPIED"
)

// Space describes one physical parking slot.  Spaces are identified by
// a short unique code painted on the ground (e.g. "A-01").
//
// Fields:
//  ID        – primary key identifier.
//  Code      – unique 4 character space code.
//  Status    – occupancy state (FREE, OCCUPIED).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Space struct {
	ID        uint64    // car_spaces.id
	Code      string    // car_spaces.code
	Status    string    // car_spaces.status
	CreatedAt time.Time // car_spaces.created_at
	UpdatedAt time.Time // car_spaces.updated_at
}
