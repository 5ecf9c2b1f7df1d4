package types

import "errors"

// Location codec errors (prd001-harness-core R4).
var (
	// ErrLocationNotFound means a description contained no
	// location = '...' assignment.
	ErrLocationNotFound = errors.New("location not found in description")

	// ErrAmbiguousLocation means a description contained a second
	// location = '...' assignment, even a textually identical one.
	ErrAmbiguousLocation = errors.New("ambiguous location in description")

	// ErrMalformedLocation means a location did not match the
	// scheme://bucket/key shape.
	ErrMalformedLocation = errors.New("malformed location")
)

// Command execution errors returned by Executor bindings
// (prd002-local-binding R5).
var (
	ErrSchemaNotFound = errors.New("schema not found")
	ErrSchemaExists   = errors.New("schema already exists")
	ErrSchemaNotEmpty = errors.New("schema is not empty")
	ErrTableNotFound  = errors.New("table not found")
	ErrTableExists    = errors.New("table already exists")
	ErrUnknownCommand = errors.New("unknown command")
)

// Binding lifecycle errors (prd002-local-binding R2).
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)
