package ingest

import "errors"

var (
	// ErrDataAbsent means upstream answered successfully with no samples.
	ErrDataAbsent = errors.New("upstream returned no data")
	// ErrMissingMapping means the entity has no upstream type identifier.
	ErrMissingMapping = errors.New("no upstream type mapping")
	// ErrReconciliationRejected means a quote pair had a non-positive price.
	ErrReconciliationRejected = errors.New("quote pair rejected")
	// ErrMissingSource means one side of the quote pair was not returned.
	ErrMissingSource = errors.New("quote source missing")
)
