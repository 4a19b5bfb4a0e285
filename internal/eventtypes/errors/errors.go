package errors

import "errors"

var (
	ErrNotFound = errors.New("event type not found")

	ErrInvalidID = errors.New("invalid event type ID format")

	ErrSlugTaken = errors.New("event type slug already exists")
)
