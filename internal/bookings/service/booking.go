package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/bookings/events"
	"slotkeeper/internal/bookings/lock"
	"slotkeeper/internal/bookings/repository"
	"slotkeeper/internal/bookings/validator"
	"slotkeeper/internal/scheduling"
	"slotkeeper/pkg/clock"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/middleware"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/sanitizer"
)

const publishTimeout = 5 * time.Second

type BookingService interface {
	// AvailableSlots lists the bookable slots of date for an event type.
	AvailableSlots(ctx context.Context, date, eventTypeID string) (*model.AvailableSlotsResponse, error)
	Create(ctx context.Context, input *model.BookingInput) (*model.BookingView, error)
	GetByID(ctx context.Context, id string) (*model.BookingView, error)
	// ListMeetings accepts "upcoming", "past" or anything else for all.
	ListMeetings(ctx context.Context, meetingType string) ([]*model.BookingView, error)
	// Cancel is idempotent: cancelling a cancelled booking returns it as is.
	Cancel(ctx context.Context, id string) (*model.BookingView, error)
}

// EventTypeLookup resolves event types. Errors are AppErrors.
type EventTypeLookup interface {
	GetByID(ctx context.Context, id string) (*model.EventType, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.EventType, error)
}

// TemplateSource returns the current weekly template. Errors are AppErrors.
type TemplateSource interface {
	Template(ctx context.Context) (scheduling.WeeklyTemplate, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	locker     lock.SlotLocker
	eventTypes EventTypeLookup
	templates  TemplateSource
	generator  *scheduling.CachedGenerator
	publisher  events.Publisher
	validator  *validator.BookingValidator
	cfg        *config.Config
	clock      clock.Clock
}

func NewBookingService(
	repo repository.BookingRepository,
	locker lock.SlotLocker,
	eventTypes EventTypeLookup,
	templates TemplateSource,
	generator *scheduling.CachedGenerator,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
	clk clock.Clock,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:       repo,
		locker:     locker,
		eventTypes: eventTypes,
		templates:  templates,
		generator:  generator,
		publisher:  publisher,
		validator:  validator,
		cfg:        cfg,
		clock:      clk,
	}
}

func (s *bookingService) AvailableSlots(ctx context.Context, date, eventTypeID string) (*model.AvailableSlotsResponse, error) {
	if date == "" || eventTypeID == "" {
		return nil, apperrors.InvalidInput("date and eventTypeId are required")
	}
	day, err := scheduling.ParseDate(date)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid date format, expected YYYY-MM-DD")
	}

	eventType, err := s.activeEventType(ctx, eventTypeID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.Template(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := s.generator.Generate(day, tpl, eventType.Duration, s.cfg.SlotStepMinutes)
	if err != nil {
		return nil, s.generationError(err)
	}
	if len(candidates) == 0 {
		return &model.AvailableSlotsResponse{AvailableSlots: []model.SlotView{}}, nil
	}

	from, to := span(candidates)
	booked, err := s.repo.FindScheduledOverlapping(ctx, from.Add(-tpl.MaxBuffer()), to.Add(tpl.MaxBuffer()))
	if err != nil {
		return nil, s.storageError("Failed to load bookings", err)
	}

	free := scheduling.FilterAvailable(candidates, toSlots(booked), tpl.BufferBefore, tpl.BufferAfter)

	now := s.clock.Now()
	views := make([]model.SlotView, 0, len(free))
	for _, slot := range free {
		if slot.Start.Before(now) {
			continue
		}
		views = append(views, model.SlotView{StartTime: slot.Start.UTC(), EndTime: slot.End.UTC()})
	}

	s.cfg.Log.Debug("Available slots computed",
		"date", date,
		"event_type_id", eventTypeID,
		"candidates", len(candidates),
		"available", len(views),
	)
	return &model.AvailableSlotsResponse{AvailableSlots: views}, nil
}

func (s *bookingService) Create(ctx context.Context, input *model.BookingInput) (*model.BookingView, error) {
	s.sanitize(input)
	now := s.clock.Now()
	if err := s.validator.Validate(input, now); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	start := input.StartTime.UTC()
	if !start.Equal(start.Truncate(time.Minute)) {
		return nil, apperrors.Validation("Start time must be on a whole minute", map[string]any{
			"startTime": input.StartTime,
		})
	}

	eventType, err := s.activeEventType(ctx, input.EventTypeID)
	if err != nil {
		return nil, err
	}

	end := start.Add(time.Duration(eventType.Duration) * time.Minute)

	tpl, err := s.templates.Template(ctx)
	if err != nil {
		return nil, err
	}
	if !tpl.Contains(start, end) {
		return nil, apperrors.Validation("Requested time is outside availability", map[string]any{
			"startTime": start,
			"endTime":   end,
		})
	}

	// Any booking that could conflict lies inside this interval, so the
	// days it touches are the lock scope.
	guardStart, guardEnd := start.Add(-tpl.BufferBefore), end.Add(tpl.BufferAfter)

	release, err := s.acquire(ctx, lock.Keys(scheduling.DatesSpanned(guardStart, guardEnd, tpl.Loc())))
	if err != nil {
		return nil, err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.BookingLockWait)
		defer cancel()
		if releaseErr := release(releaseCtx); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		EventTypeID:  eventType.ID,
		InviteeName:  input.InviteeName,
		InviteeEmail: input.InviteeEmail,
		StartTime:    start,
		EndTime:      end,
		Status:       model.BookingStatusScheduled,
		Notes:        input.Notes,
		CreatedAt:    now.UTC().Truncate(time.Millisecond),
		UpdatedAt:    now.UTC().Truncate(time.Millisecond),
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindScheduledOverlapping(txCtx, guardStart, guardEnd)
		if err != nil {
			return err
		}
		candidate := scheduling.Slot{Start: start, End: end}
		if !scheduling.IsAvailable(candidate, toSlots(existing), tpl.BufferBefore, tpl.BufferAfter) {
			return bookingserrors.ErrTimeConflict
		}
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrTimeConflict) {
			s.cfg.Log.Info("Booking rejected, slot taken",
				"event_type_id", eventType.ID,
				"start_time", start,
			)
			return nil, apperrors.Conflict("Time slot is already booked")
		}
		return nil, s.storageError("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"event_type_id", booking.EventTypeID,
		"start_time", booking.StartTime,
	)

	view := model.NewBookingView(booking, eventType)
	s.publish(ctx, events.TypeBookingCreated, view)
	return view, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	views, err := s.views(ctx, []*model.Booking{booking})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *bookingService) ListMeetings(ctx context.Context, meetingType string) ([]*model.BookingView, error) {
	filter := repository.MeetingsAll
	switch repository.MeetingFilter(meetingType) {
	case repository.MeetingsUpcoming:
		filter = repository.MeetingsUpcoming
	case repository.MeetingsPast:
		filter = repository.MeetingsPast
	}

	bookings, err := s.repo.FindMeetings(ctx, filter, s.clock.Now().UTC())
	if err != nil {
		return nil, s.storageError("Failed to retrieve meetings", err)
	}
	return s.views(ctx, bookings)
}

func (s *bookingService) Cancel(ctx context.Context, id string) (*model.BookingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, changed, err := s.repo.Cancel(ctx, id, s.clock.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	views, err := s.views(ctx, []*model.Booking{booking})
	if err != nil {
		return nil, err
	}
	view := views[0]

	if changed {
		s.cfg.Log.Info("Booking cancelled", "id", id)
		s.publish(ctx, events.TypeBookingCancelled, view)
	} else {
		s.cfg.Log.Debug("Booking already cancelled", "id", id)
	}
	return view, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(input *model.BookingInput) {
	input.EventTypeID = sanitizer.TrimAndNormalize(input.EventTypeID)
	input.InviteeName = sanitizer.NormalizeName(input.InviteeName)
	input.InviteeEmail = sanitizer.NormalizeEmail(input.InviteeEmail)
	input.Notes = sanitizer.NormalizeNotes(input.Notes)
}

func (s *bookingService) activeEventType(ctx context.Context, id string) (*model.EventType, error) {
	eventType, err := s.eventTypes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !eventType.IsActive {
		return nil, apperrors.NotFoundWithID("Event type", id)
	}
	return eventType, nil
}

func (s *bookingService) acquire(ctx context.Context, keys []string) (lock.Release, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.BookingLockWait)
	defer cancel()

	release, err := s.locker.Acquire(lockCtx, keys)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockTimeout) {
			s.cfg.Log.Warn("Timed out waiting for booking lock", "keys", keys, "error", err)
			return nil, apperrors.Transient("Booking system is busy, please retry", err)
		}
		return nil, s.storageError("Failed to acquire booking lock", err)
	}
	return release, nil
}

// views resolves event types for bookings in one round trip. A booking whose
// event type no longer exists is returned without one.
func (s *bookingService) views(ctx context.Context, bookings []*model.Booking) ([]*model.BookingView, error) {
	ids := make([]string, 0, len(bookings))
	seen := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.EventTypeID] {
			seen[b.EventTypeID] = true
			ids = append(ids, b.EventTypeID)
		}
	}

	eventTypes, err := s.eventTypes.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, model.NewBookingView(b, eventTypes[b.EventTypeID]))
	}
	return views, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, view *model.BookingView) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.NewEvent(eventType, view, s.clock.Now(), middleware.RequestIDFromContext(ctx))
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", view.ID,
			"error", err,
		)
	}
}

func (s *bookingService) mapLookupError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return s.storageError("Failed to retrieve booking", err)
	}
}

func (s *bookingService) generationError(err error) error {
	s.cfg.Log.Error("Slot generation failed", "step_minutes", s.cfg.SlotStepMinutes, "error", err)
	return apperrors.InvalidConfiguration("Slot generation is misconfigured", err)
}

func (s *bookingService) storageError(message string, err error) error {
	s.cfg.Log.Error(message, "error", err)
	if mongotx.IsTransient(err) {
		return apperrors.Transient("Storage temporarily unavailable, please retry", err)
	}
	return apperrors.Internal(message, err)
}

func toSlots(bookings []*model.Booking) []scheduling.Slot {
	slots := make([]scheduling.Slot, 0, len(bookings))
	for _, b := range bookings {
		if b.IsScheduled() {
			slots = append(slots, scheduling.Slot{Start: b.StartTime, End: b.EndTime})
		}
	}
	return slots
}

// span returns the earliest start and latest end among slots.
func span(slots []scheduling.Slot) (from, to time.Time) {
	from, to = slots[0].Start, slots[0].End
	for _, slot := range slots[1:] {
		if slot.Start.Before(from) {
			from = slot.Start
		}
		if slot.End.After(to) {
			to = slot.End
		}
	}
	return from, to
}
