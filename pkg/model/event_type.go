package model

import "time"

type EventType struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Duration    int       `json:"duration" bson:"duration" validate:"required,min=1,max=1440"`
	Slug        string    `json:"slug" bson:"slug" validate:"required,slug,max=64"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	Color       string    `json:"color" bson:"color" validate:"omitempty,hexcolor"`
	IsActive    bool      `json:"isActive" bson:"is_active"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

type EventTypeUpdate struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Duration    *int    `json:"duration,omitempty" validate:"omitempty,min=1,max=1440"`
	Slug        string  `json:"slug,omitempty" validate:"omitempty,slug,max=64"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// EventTypeSummary is embedded in booking views.
type EventTypeSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Duration int    `json:"duration"`
	Color    string `json:"color,omitempty"`
}

func (e *EventType) Summary() *EventTypeSummary {
	if e == nil {
		return nil
	}
	return &EventTypeSummary{
		ID:       e.ID,
		Name:     e.Name,
		Slug:     e.Slug,
		Duration: e.Duration,
		Color:    e.Color,
	}
}
