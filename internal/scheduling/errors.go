package scheduling

import "errors"

var (
	// ErrInvalidConfiguration is returned for a non-positive duration or step.
	ErrInvalidConfiguration = errors.New("invalid slot configuration")

	ErrInvalidWeekday   = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrDuplicateWeekday = errors.New("weekday listed more than once")
	ErrInvalidTimeOfDay = errors.New("time of day must be HH:MM between 00:00 and 23:59")
	ErrInvalidWindow    = errors.New("window start must be before its end")
	ErrInvalidTimezone  = errors.New("unknown IANA timezone")
	ErrInvalidBuffer    = errors.New("buffer must be a non-negative number of minutes")
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
)
