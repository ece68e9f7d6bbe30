package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidResult signals a curated result that fails validation.
	ErrInvalidResult = errors.New("invalid result")
	// ErrBadQuery signals an advanced-search string that cannot be compiled.
	ErrBadQuery = errors.New("bad query")
	// ErrMappingMismatch signals an alias that resolves to a field absent from
	// the mapping's field types. This is a configuration defect, not user input.
	ErrMappingMismatch = errors.New("search mapping mismatch")
)
