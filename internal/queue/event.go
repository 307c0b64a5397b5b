// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckoutCompletedEvent is published after a vehicle checks out and
// the stay is settled.  It carries enough for downstream consumers to
// log, notify or feed analytics without querying the primary database.
// Money fields are decimal strings with two fraction digits.
type CheckoutCompletedEvent struct {
	Receipt      string `json:"receipt"`
	ClientCPF    string `json:"client_cpf"`
	LicensePlate string `json:"license_plate"`
	SpaceCode    string `json:"space_code"`
	EntryDate    string `json:"entry_date"`
	EndDate      string `json:"end_date"`
	Value        string `json:"value"`
	Discount     string `json:"discount"`
}
