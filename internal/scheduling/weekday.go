package scheduling

import (
	"fmt"
	"time"
)

// Weekday is a closed enumeration, Sunday (0) through Saturday (6).
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// AllWeekdays lists every weekday in numeric order.
var AllWeekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ParseWeekday converts a stored day number. Out-of-range numbers are invalid,
// which is distinct from a day that is simply absent from a template.
func ParseWeekday(n int) (Weekday, error) {
	if n < int(Sunday) || n > int(Saturday) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidWeekday, n)
	}
	return Weekday(n), nil
}

func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return time.Weekday(w).String()
}
