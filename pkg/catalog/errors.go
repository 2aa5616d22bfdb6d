package catalog

import "errors"

var (
	// ErrDuplicateKey is returned when a combine target already exists.
	ErrDuplicateKey = errors.New("catalog: key already exists")

	// ErrNotFound is returned when a referenced key is not in the store.
	ErrNotFound = errors.New("catalog: not found")

	// ErrUnordered is returned when samples cannot be totally ordered (NaN).
	ErrUnordered = errors.New("catalog: sample is not orderable")

	// ErrNoSources is returned when combine is given nothing to merge.
	ErrNoSources = errors.New("catalog: no source entries")
)
