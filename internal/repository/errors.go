// Package repository implements the MySQL persistence layer: spaces,
// clients, the occupancy ledger, users and refresh tokens.  This file
// defines the sentinel errors shared across repositories so that
// higher layers can map each failure to a distinct response category.
// Not-found and conflict conditions each get their own value; storage
// errors that fit neither class are returned as-is for the caller to
// treat as transient.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Not-found class.  Surfaced to callers as 404-style responses and
// never retried by the core.
var (
	// ErrNoFreeSpace is returned when a claim finds every space occupied.
	// Claims never block waiting for capacity; checkout frees it.
	ErrNoFreeSpace = errors.New("no free parking space")

	// ErrSpaceNotFound is returned when no space has the given code.
	ErrSpaceNotFound = errors.New("parking space not found")

	// ErrClientNotFound is returned when no client matches the given
	// CPF or id.
	ErrClientNotFound = errors.New("client not found")

	// ErrReceiptNotFound is returned when no open record matches the
	// receipt.  A record that was already checked out reports the same
	// error: checkout is single use.
	ErrReceiptNotFound = errors.New("receipt not found or already checked out")
)

// Conflict class.  Indicates caller error or a lost race; surfaced as
// 409-style responses, never silently ignored.
var (
	// ErrCodeExists is returned when registering a space whose code is
	// already taken.
	ErrCodeExists = errors.New("space code already registered")

	// ErrCPFExists is returned when registering a client whose CPF is
	// already taken.
	ErrCPFExists = errors.New("cpf already registered")

	// ErrEmailExists is returned when registering a user whose email is
	// already taken.
	ErrEmailExists = errors.New("email already exists")

	// ErrDuplicateReceipt is returned when the ledger already holds a
	// record with the same receipt code.
	ErrDuplicateReceipt = errors.New("receipt already exists")

	// ErrSessionClosed is returned when closing a ledger record whose
	// end date is already set.
	ErrSessionClosed = errors.New("parking session already closed")

	// ErrSpaceNotOccupied is returned when releasing a space that is
	// already free.  The double release points at a programming error
	// and must surface rather than succeed silently.
	ErrSpaceNotOccupied = errors.New("space is not occupied")
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// isDuplicateKey reports whether err is the MySQL duplicate-entry error
// (1062), raised when an insert violates a unique index.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
