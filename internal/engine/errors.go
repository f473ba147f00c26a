package engine

import "errors"

// Sentinel errors for engine operations.
var (
	// ErrInvalidTable indicates a table name that failed identifier
	// validation. Nothing is sent to the database in that case.
	ErrInvalidTable = errors.New("invalid table name")

	// ErrNotFound indicates that a mutation affected zero rows: the record
	// does not exist or was already soft-deleted. Distinct from transport
	// and database faults.
	ErrNotFound = errors.New("record not found or already deleted")

	// ErrNoFields indicates a create or update call without any column data.
	ErrNoFields = errors.New("no fields provided")
)
