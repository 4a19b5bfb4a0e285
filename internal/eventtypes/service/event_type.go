package service

import (
	"context"
	"errors"
	"time"

	eventtypeserrors "slotkeeper/internal/eventtypes/errors"
	"slotkeeper/internal/eventtypes/repository"
	"slotkeeper/internal/eventtypes/validator"
	"slotkeeper/pkg/clock"
	"slotkeeper/pkg/config"
	mongotx "slotkeeper/pkg/db/mongo"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/sanitizer"
)

const defaultColor = "#0066ff"

type EventTypeService interface {
	Create(ctx context.Context, eventType *model.EventType) error
	GetByID(ctx context.Context, id string) (*model.EventType, error)
	GetBySlug(ctx context.Context, slug string) (*model.EventType, error)
	// GetByIDs resolves many ids at once; missing ids are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.EventType, error)
	List(ctx context.Context) ([]*model.EventType, error)
	Update(ctx context.Context, id string, updates *model.EventTypeUpdate) (*model.EventType, error)
	Delete(ctx context.Context, id string) error
}

type eventTypeService struct {
	repo      repository.EventTypeRepository
	validator *validator.EventTypeValidator
	cfg       *config.Config
	clock     clock.Clock
}

func NewEventTypeService(
	repo repository.EventTypeRepository,
	validator *validator.EventTypeValidator,
	cfg *config.Config,
	clk clock.Clock,
) EventTypeService {
	return &eventTypeService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		clock:     clk,
	}
}

func (s *eventTypeService) Create(ctx context.Context, eventType *model.EventType) error {
	s.sanitize(eventType)
	s.applyDefaults(eventType)
	if err := s.validate(eventType); err != nil {
		return err
	}

	now := s.clock.Now().UTC().Truncate(time.Millisecond)
	eventType.ID = ""
	eventType.IsActive = true
	eventType.CreatedAt = now
	eventType.UpdatedAt = now

	if err := s.repo.Create(ctx, eventType); err != nil {
		if errors.Is(err, eventtypeserrors.ErrSlugTaken) {
			return apperrors.Conflict("Slug already exists").WithDetails(map[string]any{"slug": eventType.Slug})
		}
		return s.storageError("Failed to create event type", err)
	}

	s.cfg.Log.Info("Event type created successfully",
		"id", eventType.ID,
		"slug", eventType.Slug,
		"duration", eventType.Duration,
	)
	return nil
}

func (s *eventTypeService) GetByID(ctx context.Context, id string) (*model.EventType, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event type ID cannot be empty")
	}

	eventType, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return eventType, nil
}

func (s *eventTypeService) GetBySlug(ctx context.Context, slug string) (*model.EventType, error) {
	if slug == "" {
		return nil, apperrors.InvalidInput("Event type slug cannot be empty")
	}

	eventType, err := s.repo.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, s.mapLookupError(err, slug)
	}
	return eventType, nil
}

func (s *eventTypeService) GetByIDs(ctx context.Context, ids []string) (map[string]*model.EventType, error) {
	byID := make(map[string]*model.EventType, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	eventTypes, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, s.storageError("Failed to retrieve event types", err)
	}
	for _, et := range eventTypes {
		byID[et.ID] = et
	}
	return byID, nil
}

func (s *eventTypeService) List(ctx context.Context) ([]*model.EventType, error) {
	eventTypes, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, s.storageError("Failed to retrieve event types", err)
	}
	return eventTypes, nil
}

func (s *eventTypeService) Update(ctx context.Context, id string, updates *model.EventTypeUpdate) (*model.EventType, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates = s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Event type update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}
	merged.UpdatedAt = s.clock.Now().UTC().Truncate(time.Millisecond)

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, eventtypeserrors.ErrSlugTaken) {
			return nil, apperrors.Conflict("Slug already exists").WithDetails(map[string]any{"slug": merged.Slug})
		}
		return nil, s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Event type updated successfully", "id", id)
	return merged, nil
}

func (s *eventTypeService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Event type ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id, s.clock.Now().UTC()); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Event type deactivated", "id", id)
	return nil
}

// --- Helpers ---

func (s *eventTypeService) sanitize(et *model.EventType) {
	et.Name = sanitizer.NormalizeName(et.Name)
	et.Description = sanitizer.NormalizeNotes(et.Description)
	et.Color = sanitizer.NormalizeColor(et.Color)
	if et.Slug == "" {
		et.Slug = sanitizer.NormalizeSlug(et.Name)
	} else {
		et.Slug = sanitizer.NormalizeSlug(et.Slug)
	}
}

// sanitizeUpdate returns a normalized copy so update and create accept the
// same inputs. A slug with nothing slug-safe in it is kept raw and fails
// validation instead of reading as "unchanged".
func (s *eventTypeService) sanitizeUpdate(updates *model.EventTypeUpdate) *model.EventTypeUpdate {
	clean := *updates
	clean.Name = sanitizer.NormalizeName(clean.Name)
	clean.Color = sanitizer.NormalizeColor(clean.Color)
	if slug := sanitizer.NormalizeSlug(clean.Slug); slug != "" {
		clean.Slug = slug
	}
	if clean.Description != nil {
		description := sanitizer.NormalizeNotes(*clean.Description)
		clean.Description = &description
	}
	return &clean
}

func (s *eventTypeService) applyDefaults(et *model.EventType) {
	if et.Color == "" {
		et.Color = defaultColor
	}
}

func (s *eventTypeService) mergeUpdates(existing *model.EventType, updates *model.EventTypeUpdate) *model.EventType {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Duration != nil {
		merged.Duration = *updates.Duration
	}
	if updates.Slug != "" {
		merged.Slug = updates.Slug
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Color != "" {
		merged.Color = updates.Color
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}

	return &merged
}

func (s *eventTypeService) validate(et *model.EventType) error {
	if err := s.validator.Validate(et); err != nil {
		s.cfg.Log.Warn("Event type validation failed", "error", err)
		return apperrors.Validation("Event type validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *eventTypeService) mapLookupError(err error, key string) error {
	switch {
	case errors.Is(err, eventtypeserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Event type", key)
	case errors.Is(err, eventtypeserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid event type ID format")
	default:
		return s.storageError("Failed to retrieve event type", err)
	}
}

func (s *eventTypeService) storageError(message string, err error) error {
	s.cfg.Log.Error(message, "error", err)
	if mongotx.IsTransient(err) {
		return apperrors.Transient("Storage temporarily unavailable, please retry", err)
	}
	return apperrors.Internal(message, err)
}
