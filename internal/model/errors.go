package model

import "errors"

// Validation errors shared by the API, the store and the client.
var (
	// ErrInvalidID is returned for identifiers that are not 24 hex characters
	ErrInvalidID = errors.New("invalid identifier")

	ErrInvalidStatus = errors.New("invalid task status")
	ErrEmptyTitle    = errors.New("title must not be empty")
	ErrEmptyPatch    = errors.New("no fields to update")
	ErrMissingFields = errors.New("missing required fields")
)
