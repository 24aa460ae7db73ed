package rowmap

import "errors"

var (
	// ErrNotConnected is returned when Connector has no live connection
	ErrNotConnected = errors.New("rowmap: not connected")

	// ErrUnbound is returned when saving or deleting a row not created by Table
	ErrUnbound = errors.New("rowmap: row is not bound to a table")

	// ErrNoTable is returned when schema has no table name
	ErrNoTable = errors.New("rowmap: no table name provided")

	// ErrNoGenerator is returned when inserting with a schema without generator name
	ErrNoGenerator = errors.New("rowmap: no generator name provided to insert data")

	// ErrNoField is returned when a record does not map field to a column in its schema
	ErrNoField = errors.New("rowmap: no field mapped to column")

	// ErrParamCount is returned when statement has more parameters than given
	ErrParamCount = errors.New("rowmap: not enough parameters")

	// ErrMigrate is returned when dialect does not support migrations
	ErrMigrate = errors.New("rowmap: migration is not supported by dialect")
)
