package service

import (
	"context"
	"errors"

	availabilityerrors "slotkeeper/internal/availability/errors"
	"slotkeeper/internal/availability/repository"
	"slotkeeper/internal/availability/validator"
	"slotkeeper/internal/scheduling"
	"slotkeeper/pkg/clock"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/model"
)

type AvailabilityService interface {
	// Get returns the stored availability, creating the default on first use.
	Get(ctx context.Context) (*model.Availability, error)
	// Template returns the availability in its evaluated form.
	Template(ctx context.Context) (scheduling.WeeklyTemplate, error)
	// Replace swaps the whole template and bumps its version.
	Replace(ctx context.Context, input *model.AvailabilityInput) (*model.Availability, error)
}

// Purger drops derived data that depends on the template.
type Purger interface {
	Purge()
}

type availabilityService struct {
	repo      repository.AvailabilityRepository
	validator *validator.AvailabilityValidator
	cfg       *config.Config
	clock     clock.Clock
	purger    Purger
}

func NewAvailabilityService(
	repo repository.AvailabilityRepository,
	validator *validator.AvailabilityValidator,
	cfg *config.Config,
	clk clock.Clock,
	purger Purger,
) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		clock:     clk,
		purger:    purger,
	}
}

func (s *availabilityService) Get(ctx context.Context) (*model.Availability, error) {
	availability, err := s.repo.Get(ctx)
	if err == nil {
		return availability, nil
	}
	if !errors.Is(err, availabilityerrors.ErrNotFound) {
		return nil, s.storageError("Failed to retrieve availability", err)
	}

	now := s.clock.Now().UTC()
	availability = &model.Availability{
		Timezone:       s.cfg.DefaultTimezone,
		WeeklySchedule: scheduling.DefaultSchedule(),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, availability); err != nil {
		if errors.Is(err, availabilityerrors.ErrAlreadyExists) {
			// Another request created it first.
			stored, getErr := s.repo.Get(ctx)
			if getErr != nil {
				return nil, s.storageError("Failed to retrieve availability", getErr)
			}
			return stored, nil
		}
		return nil, s.storageError("Failed to create default availability", err)
	}

	s.cfg.Log.Info("Default availability created", "timezone", availability.Timezone)
	return availability, nil
}

func (s *availabilityService) Template(ctx context.Context) (scheduling.WeeklyTemplate, error) {
	availability, err := s.Get(ctx)
	if err != nil {
		return scheduling.WeeklyTemplate{}, err
	}

	tpl, err := scheduling.FromAvailability(availability)
	if err != nil {
		s.cfg.Log.Error("Stored availability is invalid", "version", availability.Version, "error", err)
		return scheduling.WeeklyTemplate{}, apperrors.InvalidConfiguration("Stored availability is invalid", err)
	}
	return tpl, nil
}

func (s *availabilityService) Replace(ctx context.Context, input *model.AvailabilityInput) (*model.Availability, error) {
	if err := s.validator.Validate(input); err != nil {
		s.cfg.Log.Warn("Availability validation failed", "error", err)
		return nil, apperrors.Validation("Availability validation failed", map[string]any{"error": err.Error()})
	}

	schedule, err := scheduling.NormalizeSchedule(input.WeeklySchedule)
	if err != nil {
		s.cfg.Log.Warn("Availability schedule rejected", "error", err)
		return nil, apperrors.Validation("Invalid weekly schedule", map[string]any{"error": err.Error()})
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if input.Version != nil && *input.Version != current.Version {
		return nil, apperrors.Conflict("Availability was modified by another request").
			WithDetails(map[string]any{"currentVersion": current.Version})
	}

	replacement := &model.Availability{
		Timezone:         input.Timezone,
		WeeklySchedule:   schedule,
		BufferTimeBefore: input.BufferTimeBefore,
		BufferTimeAfter:  input.BufferTimeAfter,
		Version:          current.Version + 1,
		CreatedAt:        current.CreatedAt,
		UpdatedAt:        s.clock.Now().UTC(),
	}

	if err := s.repo.Replace(ctx, replacement, current.Version); err != nil {
		if errors.Is(err, availabilityerrors.ErrVersionConflict) {
			return nil, apperrors.Conflict("Availability was modified by another request")
		}
		return nil, s.storageError("Failed to update availability", err)
	}

	if s.purger != nil {
		s.purger.Purge()
	}

	s.cfg.Log.Info("Availability replaced",
		"version", replacement.Version,
		"timezone", replacement.Timezone,
		"buffer_before", replacement.BufferTimeBefore,
		"buffer_after", replacement.BufferTimeAfter,
	)
	return replacement, nil
}

func (s *availabilityService) storageError(message string, err error) error {
	s.cfg.Log.Error(message, "error", err)
	if mongotx.IsTransient(err) {
		return apperrors.Transient("Storage temporarily unavailable, please retry", err)
	}
	return apperrors.Internal(message, err)
}
