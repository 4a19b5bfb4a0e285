package model

import (
	"time"
)

const (
	BookingStatusScheduled = "scheduled"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	EventTypeID  string     `json:"eventTypeId" bson:"event_type_id"`
	InviteeName  string     `json:"inviteeName" bson:"invitee_name"`
	InviteeEmail string     `json:"inviteeEmail" bson:"invitee_email"`
	StartTime    time.Time  `json:"startTime" bson:"start_time"`
	EndTime      time.Time  `json:"endTime" bson:"end_time"`
	Status       string     `json:"status" bson:"status"`
	Notes        string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updated_at"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty" bson:"cancelled_at,omitempty"`
}

func (b *Booking) IsScheduled() bool {
	return b.Status == BookingStatusScheduled
}

// BookingInput is the public create payload. StartTime is RFC 3339.
type BookingInput struct {
	EventTypeID  string    `json:"eventTypeId" validate:"required,mongodb"`
	InviteeName  string    `json:"inviteeName" validate:"required,notblank,max=100"`
	InviteeEmail string    `json:"inviteeEmail" validate:"required,email,max=254"`
	StartTime    time.Time `json:"startTime" validate:"required"`
	Notes        string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// BookingView is a booking with its event type resolved.
type BookingView struct {
	Booking
	EventType *EventTypeSummary `json:"eventType,omitempty"`
}

func NewBookingView(b *Booking, et *EventType) *BookingView {
	return &BookingView{Booking: *b, EventType: et.Summary()}
}

// SlotView is one bookable interval rendered in UTC.
type SlotView struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type AvailableSlotsResponse struct {
	AvailableSlots []SlotView `json:"availableSlots"`
}
