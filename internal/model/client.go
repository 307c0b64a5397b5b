package model

import "time"

// Client is a registered customer of the parking lot.  Clients are
// identified by their CPF (Brazilian tax number, 11 digits with two
// checksum digits) and belong to the user account that registered
// them.  The parking core never mutates a client.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the client.
//  CPF       – unique 11 digit identity number.
//  UserID    – account that owns this client profile.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Client struct {
	ID        uint64    // clients.id
	Name      string    // clients.name
	CPF       string    // clients.cpf
	UserID    uint64    // clients.user_id
	CreatedAt time.Time // clients.created_at
	UpdatedAt time.Time // clients.updated_at
}
