package errors

import "errors"

var (
	ErrNotFound     = errors.New("booking not found")
	ErrInvalidID    = errors.New("invalid booking ID")
	ErrTimeConflict = errors.New("time slot is already booked")
	ErrLockHeld     = errors.New("booking lock is held by another request")
	ErrLockTimeout  = errors.New("timed out waiting for booking lock")
)
