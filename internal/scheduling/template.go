package scheduling

import (
	"fmt"
	"slices"
	"time"

	"slotkeeper/pkg/model"
)

// Window is a local wall-clock interval [Start, End) in which slots may fall.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

type Day struct {
	Enabled bool
	Windows []Window
}

// WeeklyTemplate is the effective recurring availability. It is an immutable
// value: updates replace it wholesale and bump Version.
type WeeklyTemplate struct {
	Timezone     string
	Location     *time.Location
	Days         map[Weekday]Day
	BufferBefore time.Duration
	BufferAfter  time.Duration
	Version      int64
}

// ResolveDay never fails: a weekday that is missing, disabled or has no
// windows resolves to a disabled day with no windows.
func (t WeeklyTemplate) ResolveDay(w Weekday) Day {
	day, ok := t.Days[w]
	if !ok || !day.Enabled || len(day.Windows) == 0 {
		return Day{}
	}
	return Day{Enabled: true, Windows: slices.Clone(day.Windows)}
}

// Loc returns the template's location, falling back to UTC for a zero value.
func (t WeeklyTemplate) Loc() *time.Location {
	if t.Location != nil {
		return t.Location
	}
	if loc, err := time.LoadLocation(t.Timezone); err == nil && t.Timezone != "" {
		return loc
	}
	return time.UTC
}

// MaxBuffer is the larger of the two buffers; it bounds how far outside a
// window a booking can still constrain candidates.
func (t WeeklyTemplate) MaxBuffer() time.Duration {
	return max(t.BufferBefore, t.BufferAfter)
}

// DayBounds returns the earliest window start and latest window end of date,
// or ok=false when the day is unavailable.
func (t WeeklyTemplate) DayBounds(date Date) (start, end time.Time, ok bool) {
	day := t.ResolveDay(date.Weekday())
	if !day.Enabled {
		return time.Time{}, time.Time{}, false
	}

	loc := t.Loc()
	for i, w := range day.Windows {
		ws, we := date.At(w.Start, loc), date.At(w.End, loc)
		if i == 0 || ws.Before(start) {
			start = ws
		}
		if i == 0 || we.After(end) {
			end = we
		}
	}
	return start, end, true
}

// Contains reports whether [start, end) lies entirely inside one enabled
// window of start's local date.
func (t WeeklyTemplate) Contains(start, end time.Time) bool {
	if !end.After(start) {
		return false
	}

	loc := t.Loc()
	date := DateOf(start.In(loc))
	for _, w := range t.ResolveDay(date.Weekday()).Windows {
		ws, we := date.At(w.Start, loc), date.At(w.End, loc)
		if !start.Before(ws) && !end.After(we) {
			return true
		}
	}
	return false
}

// NormalizeWindows validates each window and returns them sorted by start
// with overlapping or touching windows merged.
func NormalizeWindows(windows []Window) ([]Window, error) {
	for _, w := range windows {
		if !w.Start.Valid() || !w.End.Valid() {
			return nil, ErrInvalidTimeOfDay
		}
		if !w.Start.Before(w.End) {
			return nil, fmt.Errorf("%w: %s-%s", ErrInvalidWindow, w.Start, w.End)
		}
	}

	sorted := slices.Clone(windows)
	slices.SortFunc(sorted, func(a, b Window) int {
		if c := a.Start.Minutes() - b.Start.Minutes(); c != 0 {
			return c
		}
		return a.End.Minutes() - b.End.Minutes()
	})

	merged := make([]Window, 0, len(sorted))
	for _, w := range sorted {
		if n := len(merged); n > 0 && w.Start.Minutes() <= merged[n-1].End.Minutes() {
			if merged[n-1].End.Before(w.End) {
				merged[n-1].End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged, nil
}

// FromAvailability builds a template from the stored document. Stored
// documents are normalized on write; this still rejects malformed data
// instead of guessing.
func FromAvailability(a *model.Availability) (WeeklyTemplate, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil || a.Timezone == "" {
		return WeeklyTemplate{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, a.Timezone)
	}
	if a.BufferTimeBefore < 0 || a.BufferTimeAfter < 0 {
		return WeeklyTemplate{}, ErrInvalidBuffer
	}

	days, err := parseDays(a.WeeklySchedule, false)
	if err != nil {
		return WeeklyTemplate{}, err
	}

	return WeeklyTemplate{
		Timezone:     a.Timezone,
		Location:     loc,
		Days:         days,
		BufferBefore: time.Duration(a.BufferTimeBefore) * time.Minute,
		BufferAfter:  time.Duration(a.BufferTimeAfter) * time.Minute,
		Version:      a.Version,
	}, nil
}

// NormalizeSchedule validates a submitted weekly schedule and returns its
// canonical stored form: one entry per listed weekday in day order, windows
// sorted and merged.
func NormalizeSchedule(schedule []model.DaySchedule) ([]model.DaySchedule, error) {
	days, err := parseDays(schedule, true)
	if err != nil {
		return nil, err
	}

	out := make([]model.DaySchedule, 0, len(days))
	for _, w := range AllWeekdays {
		day, ok := days[w]
		if !ok {
			continue
		}
		slots := make([]model.TimeRange, 0, len(day.Windows))
		for _, win := range day.Windows {
			slots = append(slots, model.TimeRange{Start: win.Start.String(), End: win.End.String()})
		}
		out = append(out, model.DaySchedule{Day: int(w), IsEnabled: day.Enabled, TimeSlots: slots})
	}
	return out, nil
}

func parseDays(schedule []model.DaySchedule, normalize bool) (map[Weekday]Day, error) {
	days := make(map[Weekday]Day, len(schedule))
	for _, entry := range schedule {
		weekday, err := ParseWeekday(entry.Day)
		if err != nil {
			return nil, err
		}
		if _, dup := days[weekday]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWeekday, weekday)
		}

		windows := make([]Window, 0, len(entry.TimeSlots))
		for _, slot := range entry.TimeSlots {
			start, err := ParseTimeOfDay(slot.Start)
			if err != nil {
				return nil, err
			}
			end, err := ParseTimeOfDay(slot.End)
			if err != nil {
				return nil, err
			}
			windows = append(windows, Window{Start: start, End: end})
		}

		if normalize {
			if windows, err = NormalizeWindows(windows); err != nil {
				return nil, fmt.Errorf("%s: %w", weekday, err)
			}
		}
		days[weekday] = Day{Enabled: entry.IsEnabled, Windows: windows}
	}
	return days, nil
}

// DefaultSchedule is Monday to Friday 09:00-17:00 with the weekend disabled.
func DefaultSchedule() []model.DaySchedule {
	schedule := make([]model.DaySchedule, 0, len(AllWeekdays))
	for _, w := range AllWeekdays {
		entry := model.DaySchedule{Day: int(w), TimeSlots: []model.TimeRange{}}
		if w != Saturday && w != Sunday {
			entry.IsEnabled = true
			entry.TimeSlots = []model.TimeRange{{Start: "09:00", End: "17:00"}}
		}
		schedule = append(schedule, entry)
	}
	return schedule
}
