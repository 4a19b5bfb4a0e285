package main

import (
	"context"
	"time"

	availabilityrepository "slotkeeper/internal/availability/repository"
	availabilityservice "slotkeeper/internal/availability/service"
	availabilityvalidator "slotkeeper/internal/availability/validator"
	eventtyperepository "slotkeeper/internal/eventtypes/repository"
	eventtypeservice "slotkeeper/internal/eventtypes/service"
	eventtypevalidator "slotkeeper/internal/eventtypes/validator"
	"slotkeeper/internal/scheduling"
	"slotkeeper/pkg/clock"
	"slotkeeper/pkg/config"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/model"
)

const (
	JobName = "seed"

	seedTimezone = "America/New_York"
)

var sampleEventTypes = []model.EventType{
	{
		Name:        "30 Minute Meeting",
		Duration:    30,
		Slug:        "30min",
		Description: "A quick 30-minute meeting to discuss your project or ideas",
		Color:       "#0066ff",
	},
	{
		Name:        "60 Minute Consultation",
		Duration:    60,
		Slug:        "60min",
		Description: "In-depth consultation to discuss your requirements in detail",
		Color:       "#10b981",
	},
	{
		Name:        "15 Minute Quick Chat",
		Duration:    15,
		Slug:        "15min",
		Description: "A brief 15-minute call for quick questions or introductions",
		Color:       "#f59e0b",
	},
	{
		Name:        "Project Kickoff",
		Duration:    90,
		Slug:        "project-kickoff",
		Description: "Comprehensive project kickoff meeting to align on goals and timeline",
		Color:       "#8b5cf6",
	},
}

// Seeding is idempotent: event types whose slug exists are skipped and the
// availability is replaced with the default week.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	clk := clock.NewSystem()
	eventTypes := eventtypeservice.NewEventTypeService(
		eventtyperepository.NewMongoEventTypeRepository(cfg),
		eventtypevalidator.NewEventTypeValidator(cfg.Log),
		cfg,
		clk,
	)
	availability := availabilityservice.NewAvailabilityService(
		availabilityrepository.NewMongoAvailabilityRepository(cfg),
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
		clk,
		nil,
	)

	created := 0
	for _, sample := range sampleEventTypes {
		eventType := sample
		err := eventTypes.Create(ctx, &eventType)
		switch {
		case err == nil:
			created++
		case apperrors.HasCode(err, apperrors.CodeConflict):
			cfg.Log.Info("Event type already present, skipping", "slug", sample.Slug)
		default:
			cfg.Log.Error("Failed to seed event type", "slug", sample.Slug, "error", err)
			return
		}
	}
	cfg.Log.Info("Seeded event types", "created", created, "total", len(sampleEventTypes))

	result, err := availability.Replace(ctx, &model.AvailabilityInput{
		Timezone:       seedTimezone,
		WeeklySchedule: scheduling.DefaultSchedule(),
	})
	if err != nil {
		cfg.Log.Error("Failed to seed availability", "error", err)
		return
	}
	cfg.Log.Info("Seeded availability", "timezone", result.Timezone, "version", result.Version)
}
