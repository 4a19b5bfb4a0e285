package model

import "time"

// AvailabilityID is the _id of the single availability document.
const AvailabilityID = "current"

// Availability is the persisted weekly template in its wire shape. Days are
// 0 (Sunday) through 6 (Saturday); times are "HH:MM" in Timezone.
type Availability struct {
	ID               string        `json:"id" bson:"_id"`
	Timezone         string        `json:"timezone" bson:"timezone"`
	WeeklySchedule   []DaySchedule `json:"weeklySchedule" bson:"weekly_schedule"`
	BufferTimeBefore int           `json:"bufferTimeBefore" bson:"buffer_time_before"`
	BufferTimeAfter  int           `json:"bufferTimeAfter" bson:"buffer_time_after"`
	Version          int64         `json:"version" bson:"version"`
	CreatedAt        time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" bson:"updated_at"`
}

type DaySchedule struct {
	Day       int         `json:"day" bson:"day" validate:"min=0,max=6"`
	IsEnabled bool        `json:"isEnabled" bson:"is_enabled"`
	TimeSlots []TimeRange `json:"timeSlots" bson:"time_slots" validate:"omitempty,dive"`
}

type TimeRange struct {
	Start string `json:"start" bson:"start" validate:"required,time_of_day"`
	End   string `json:"end" bson:"end" validate:"required,time_of_day"`
}

// AvailabilityInput replaces the template wholesale. Version, when set, must
// match the stored version.
type AvailabilityInput struct {
	Timezone         string        `json:"timezone" validate:"required,timezone"`
	WeeklySchedule   []DaySchedule `json:"weeklySchedule" validate:"max=7,dive"`
	BufferTimeBefore int           `json:"bufferTimeBefore" validate:"min=0,max=1440"`
	BufferTimeAfter  int           `json:"bufferTimeAfter" validate:"min=0,max=1440"`
	Version          *int64        `json:"version,omitempty" validate:"omitempty,min=0"`
}
