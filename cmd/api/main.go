package main

import (
	availabilityhandler "slotkeeper/internal/availability/handler"
	availabilityrepository "slotkeeper/internal/availability/repository"
	availabilityservice "slotkeeper/internal/availability/service"
	availabilityvalidator "slotkeeper/internal/availability/validator"
	"slotkeeper/internal/bookings/events"
	bookinghandler "slotkeeper/internal/bookings/handler"
	"slotkeeper/internal/bookings/lock"
	bookingrepository "slotkeeper/internal/bookings/repository"
	bookingservice "slotkeeper/internal/bookings/service"
	bookingvalidator "slotkeeper/internal/bookings/validator"
	eventtypehandler "slotkeeper/internal/eventtypes/handler"
	eventtyperepository "slotkeeper/internal/eventtypes/repository"
	eventtypeservice "slotkeeper/internal/eventtypes/service"
	eventtypevalidator "slotkeeper/internal/eventtypes/validator"
	"slotkeeper/internal/scheduling"
	"slotkeeper/pkg/app"
	"slotkeeper/pkg/clock"
	"slotkeeper/pkg/config"
)

const ServiceName = "slotkeeper-api"

type services struct {
	availability availabilityservice.AvailabilityService
	eventTypes   eventtypeservice.EventTypeService
	bookings     bookingservice.BookingService
	publisher    events.Publisher
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.BookingLockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting slotkeeper API")
	svc := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown("events publisher", svc.publisher.Close)
	serverApp.SetApp(
		availabilityhandler.NewAvailabilityHandler(svc.availability, cfg.Log),
		eventtypehandler.NewEventTypeHandler(svc.eventTypes, cfg.Log),
		bookinghandler.NewBookingHandler(svc.bookings, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) services {
	clk := clock.NewSystem()

	generator, err := scheduling.NewCachedGenerator(cfg.SlotCacheSize)
	if err != nil {
		cfg.Log.Fatal("Failed to create slot cache", "error", err, "size", cfg.SlotCacheSize)
	}

	availabilityService := availabilityservice.NewAvailabilityService(
		availabilityrepository.NewMongoAvailabilityRepository(cfg),
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
		clk,
		generator,
	)

	eventTypeService := eventtypeservice.NewEventTypeService(
		eventtyperepository.NewMongoEventTypeRepository(cfg),
		eventtypevalidator.NewEventTypeValidator(cfg.Log),
		cfg,
		clk,
	)

	locker, err := lock.New(cfg, bookingrepository.NewBookingLockRepository(cfg))
	if err != nil {
		cfg.Log.Fatal("Failed to create booking locker", "error", err, "backend", cfg.BookingLockBackend)
	}

	publisher, err := events.New(cfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create events publisher", "error", err, "backend", cfg.EventsBackend)
	}

	bookingService := bookingservice.NewBookingService(
		bookingrepository.NewMongoBookingRepository(cfg),
		locker,
		eventTypeService,
		availabilityService,
		generator,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
		clk,
	)

	cfg.Log.Info("Services initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.BookingLockBackend,
		"events_backend", cfg.EventsBackend,
	)
	return services{
		availability: availabilityService,
		eventTypes:   eventTypeService,
		bookings:     bookingService,
		publisher:    publisher,
	}
}
