package database

import "errors"

var (
	// ErrPoolCreation is returned by Open when every creation attempt failed.
	ErrPoolCreation = errors.New("database connection pool could not be created")

	// ErrDatabaseUnavailable is returned by Acquire when no live connection could be checked out.
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// ErrQueryFailed is returned when a table query or its result iteration fails.
	ErrQueryFailed = errors.New("database query failed")

	// ErrInvalidTable is returned for table names which are not plain identifiers.
	ErrInvalidTable = errors.New("invalid table name")
)
