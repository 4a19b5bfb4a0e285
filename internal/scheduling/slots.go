package scheduling

import (
	"fmt"
	"time"
)

// Slot is a candidate half-open interval [Start, End).
type Slot struct {
	Start time.Time
	End   time.Time
}

// Generate lists candidate slots for date. For each enabled window, in
// template order, a slot starts at the window start and every step minutes
// after it while start+duration still ends inside the window. A tail shorter
// than duration is dropped. Windows are not sorted or merged here; templates
// are normalized when written.
func Generate(date Date, tpl WeeklyTemplate, durationMinutes, stepMinutes int) ([]Slot, error) {
	if durationMinutes <= 0 || stepMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration=%d step=%d", ErrInvalidConfiguration, durationMinutes, stepMinutes)
	}

	day := tpl.ResolveDay(date.Weekday())
	if !day.Enabled {
		return []Slot{}, nil
	}

	loc := tpl.Loc()
	duration := time.Duration(durationMinutes) * time.Minute
	step := time.Duration(stepMinutes) * time.Minute

	slots := []Slot{}
	for _, w := range day.Windows {
		windowEnd := date.At(w.End, loc)
		for start := date.At(w.Start, loc); !start.Add(duration).After(windowEnd); start = start.Add(step) {
			slots = append(slots, Slot{Start: start, End: start.Add(duration)})
		}
	}
	return slots, nil
}
