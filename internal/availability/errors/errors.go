package errors

import "errors"

var (
	ErrNotFound = errors.New("availability not found")

	ErrAlreadyExists = errors.New("availability already exists")

	ErrVersionConflict = errors.New("availability version does not match")
)
