package domain

import "errors"

var (
	// ErrEmptySource is returned when an import source contains no rows.
	ErrEmptySource = errors.New("source contains no rows")

	// ErrNoValidRecords is returned when every row of an import was dropped
	// by filtering.
	ErrNoValidRecords = errors.New("no valid product records detected")

	// ErrExtractionFailure is returned when the extraction collaborator
	// fails (network, quota, timeout).
	ErrExtractionFailure = errors.New("extraction request failed")

	// ErrMalformedResponse is returned when the collaborator answers with a
	// payload that cannot be parsed.
	ErrMalformedResponse = errors.New("malformed extraction response")

	// ErrImportInProgress is returned when an import is triggered while a
	// previous extraction is still in flight.
	ErrImportInProgress = errors.New("another import is already in progress")

	// ErrImportDiscarded is returned when an extraction resolves after the
	// catalog was cleared; its result is dropped rather than merged.
	ErrImportDiscarded = errors.New("import result discarded after catalog clear")

	// ErrProductNotFound is returned when a catalog entry id does not exist.
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrListNotFound is returned when a saved list id does not exist.
	ErrListNotFound = errors.New("saved list not found")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrStorageFailure is returned when the persistence collaborator fails.
	ErrStorageFailure = errors.New("storage operation failed")
)
